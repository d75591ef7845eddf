package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/LeventeLantos/reseller-notifier/internal/api"
	"github.com/LeventeLantos/reseller-notifier/internal/cache"
	"github.com/LeventeLantos/reseller-notifier/internal/client"
	"github.com/LeventeLantos/reseller-notifier/internal/repo"
	"github.com/LeventeLantos/reseller-notifier/internal/scheduler"
	"github.com/LeventeLantos/reseller-notifier/internal/service"
)

func remindersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "Send scheduled due-date reminders to end-clients",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sender := service.NewSender(a.gateway, "reminders", sendDelay, time.Now)
			loop := service.NewReminderLoop(service.ReminderLoopConfig{
				Tenants:   repo.NewMySQLTenantRepo(a.db),
				Clients:   repo.NewMySQLClientRepo(a.db),
				Templates: repo.NewMySQLTemplateRepo(a.db),
				Settings:  repo.NewMySQLSettingsRepo(a.db),
				Logs:      repo.NewMySQLReminderLogRepo(a.db),
				Marker:    a.marker(),
				Sender:    sender,
				Resender:  a.resender(sender),
				Calendar:  a.cal,
				Now:       time.Now,
			})

			sched, err := scheduler.New("reminders", a.cfg.Scheduler.IntervalOr(time.Minute), loop.Tick)
			if err != nil {
				return err
			}

			h := api.NewHandler(api.Options{
				Name:        "reminders",
				Stats:       loop.Stats(),
				Scheduler:   sched,
				Reprocessor: loop,
				ExposeStats: true,
			})
			return serve(cmd.Context(), process{
				name:    "reminders",
				sched:   sched,
				port:    a.cfg.Server.ReminderPort,
				handler: api.Router(h),
			})
		},
	}
}

func invoicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invoices",
		Short: "Issue invoices ahead of due dates and send billing notices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			loop := service.NewInvoiceLoop(service.InvoiceLoopConfig{
				Tenants:    repo.NewMySQLTenantRepo(a.db),
				Clients:    repo.NewMySQLClientRepo(a.db),
				Templates:  repo.NewMySQLTemplateRepo(a.db),
				Invoices:   repo.NewMySQLInvoiceRepo(a.db),
				Logs:       repo.NewMySQLInvoiceLogRepo(a.db),
				Sender:     service.NewSender(a.gateway, "invoices", sendDelay, time.Now),
				Calendar:   a.cal,
				Now:        time.Now,
				DaysBefore: a.cfg.Scheduler.InvoiceDaysBefore,
			})

			sched, err := scheduler.New("invoices", a.cfg.Scheduler.IntervalOr(time.Hour), loop.Tick)
			if err != nil {
				return err
			}

			h := api.NewHandler(api.Options{
				Name:        "invoices",
				Stats:       loop.Stats(),
				Scheduler:   sched,
				ExposeStats: true,
			})
			return serve(cmd.Context(), process{
				name:    "invoices",
				sched:   sched,
				port:    a.cfg.Server.InvoicePort,
				handler: api.Router(h),
			})
		},
	}
}

func resellerNoticesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reseller-notices",
		Short: "Warn resellers about their own subscription expiry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			loop := service.NewResellerNoticeLoop(service.ResellerNoticeLoopConfig{
				Tenants:    repo.NewMySQLTenantRepo(a.db),
				Templates:  repo.NewMySQLTemplateRepo(a.db),
				Logs:       repo.NewMySQLResellerLogRepo(a.db),
				Marker:     a.marker(),
				Sender:     service.NewSender(a.gateway, "reseller-notices", 2*sendDelay, time.Now),
				Instance:   a.cfg.Gateway.Instance,
				RenewalURL: a.cfg.RenewalURL,
				Calendar:   a.cal,
				Now:        time.Now,
			})

			sched, err := scheduler.New("reseller-notices", a.cfg.Scheduler.IntervalOr(time.Hour), loop.Tick)
			if err != nil {
				return err
			}

			h := api.NewHandler(api.Options{
				Name:      "reseller-notices",
				Stats:     loop.Stats(),
				Scheduler: sched,
			})
			return serve(cmd.Context(), process{
				name:    "reseller-notices",
				sched:   sched,
				port:    a.cfg.Server.ResellerPort,
				handler: api.Router(h),
			})
		},
	}
}

func connectionMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connection-monitor",
		Short: "Watch tenant gateway sessions and resend after reconnects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sender := service.NewSender(a.gateway, "reprocess", sendDelay, time.Now)
			monitor := service.NewConnectionMonitor(service.ConnectionMonitorConfig{
				Tenants:  repo.NewMySQLTenantRepo(a.db),
				Gateway:  a.gateway,
				Remote:   client.NewReprocessClient(a.cfg.Reprocess.BaseURL),
				Local:    a.resender(sender),
				States:   cache.NewConnectionStates(),
				Calendar: a.cal,
				Now:      time.Now,
			})

			sched, err := scheduler.New("connection-monitor", a.cfg.Scheduler.ConnectionInterval, monitor.Tick)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), process{name: "connection-monitor", sched: sched})
		},
	}
}

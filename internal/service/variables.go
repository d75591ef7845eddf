package service

import (
	"strconv"
	"time"

	"github.com/LeventeLantos/reseller-notifier/internal/model"
	"github.com/LeventeLantos/reseller-notifier/internal/render"
	"github.com/LeventeLantos/reseller-notifier/internal/schedule"
)

// ClientSubject is what end-client templates are rendered against.
type ClientSubject struct {
	Tenant model.Tenant
	Client model.Client
	Now    time.Time
	Days   int
}

type InvoiceSubject struct {
	ClientSubject
	Invoice model.Invoice
}

// ResellerSubject is what lifecycle templates are rendered against.
type ResellerSubject struct {
	Tenant     model.Tenant
	Now        time.Time
	Days       int
	RenewalURL string
}

var ReminderVariables = clientVariables(render.NewRegistry[ClientSubject](),
	func(s ClientSubject) ClientSubject { return s })

var InvoiceVariables = clientVariables(render.NewRegistry[InvoiceSubject](),
	func(s InvoiceSubject) ClientSubject { return s.ClientSubject }).
	Register("fatura_id", func(s InvoiceSubject) string { return strconv.FormatInt(s.Invoice.ID, 10) }).
	Register("valor_desconto", func(s InvoiceSubject) string { return schedule.Amount(s.Invoice.Discount) }).
	Register("valor_final", func(s InvoiceSubject) string { return schedule.Amount(s.Invoice.FinalValue) }).
	Register("valor_final_formatado", func(s InvoiceSubject) string { return schedule.Currency(s.Invoice.FinalValue) }).
	Register("descricao", func(s InvoiceSubject) string { return s.Invoice.Description }).
	Register("data_emissao", func(s InvoiceSubject) string { return schedule.DateBR(s.Invoice.IssueDate) })

var ResellerVariables = render.NewRegistry[ResellerSubject]().
	Register("revenda_nome", func(s ResellerSubject) string { return s.Tenant.Name }).
	Register("nome", func(s ResellerSubject) string { return s.Tenant.Name }).
	Register("revenda_email", func(s ResellerSubject) string { return s.Tenant.Email }).
	Register("revenda_telefone", func(s ResellerSubject) string { return s.Tenant.Phone }).
	Register("plano_nome", func(s ResellerSubject) string { return s.Tenant.PlanName }).
	Register("plano_valor", func(s ResellerSubject) string { return schedule.Amount(s.Tenant.PlanPrice) }).
	Register("plano_valor_formatado", func(s ResellerSubject) string { return schedule.Currency(s.Tenant.PlanPrice) }).
	Register("data_vencimento", func(s ResellerSubject) string { return resellerExpiry(s, schedule.DateBR) }).
	Register("data_vencimento_extenso", func(s ResellerSubject) string { return resellerExpiry(s, schedule.LongDateBR) }).
	Register("dias_restantes", func(s ResellerSubject) string { return strconv.Itoa(s.Days) }).
	Register("dias_texto", func(s ResellerSubject) string { return schedule.HumanizeDays(s.Days) }).
	Register("link_renovacao", func(s ResellerSubject) string { return s.RenewalURL }).
	Register("data_atual", func(s ResellerSubject) string { return schedule.DateBR(s.Now) })

func resellerExpiry(s ResellerSubject, format func(time.Time) string) string {
	if s.Tenant.SubscriptionExpiresAt == nil {
		return ""
	}
	return format(*s.Tenant.SubscriptionExpiresAt)
}

func clientVariables[S any](r *render.Registry[S], get func(S) ClientSubject) *render.Registry[S] {
	add := func(fn func(ClientSubject) string, names ...string) {
		for _, name := range names {
			r.Register(name, func(s S) string { return fn(get(s)) })
		}
	}

	add(func(s ClientSubject) string { return s.Client.Name }, "cliente_nome", "nome")
	add(func(s ClientSubject) string { return s.Client.Username }, "cliente_usuario", "usuario")
	add(func(s ClientSubject) string { return s.Client.Phone }, "cliente_telefone", "telefone")
	add(func(s ClientSubject) string { return s.Client.Email }, "cliente_email", "email")
	add(func(s ClientSubject) string { return s.Client.PlanName }, "plano_nome", "plano")
	add(func(s ClientSubject) string { return schedule.Amount(s.Client.Value) }, "valor", "plano_valor")
	add(func(s ClientSubject) string { return schedule.Currency(s.Client.Value) }, "valor_formatado")
	add(func(s ClientSubject) string { return schedule.DateBR(s.Client.RenewalDate) }, "data_vencimento", "vencimento")
	add(func(s ClientSubject) string { return schedule.LongDateBR(s.Client.RenewalDate) }, "data_vencimento_extenso")
	add(func(s ClientSubject) string { return strconv.Itoa(s.Days) }, "dias_restantes", "dias")
	add(func(s ClientSubject) string { return schedule.HumanizeDays(s.Days) }, "dias_texto")
	add(func(s ClientSubject) string { return s.Client.Status.Label() }, "status")
	add(func(s ClientSubject) string { return s.Tenant.Name }, "revenda_nome")
	add(func(s ClientSubject) string { return schedule.DateBR(s.Now) }, "data_atual")
	add(func(s ClientSubject) string { return schedule.TimeBR(s.Now) }, "hora_atual")
	return r
}

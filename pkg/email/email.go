// Package email composes the notification messages the reminder engine hands
// to the transactional mail provider. Composition is pure; delivery lives
// behind the reminders.Mailer port.
package email

import (
	"fmt"
	"time"
)

// Message is a fully composed email ready for the delivery provider.
type Message struct {
	To      string
	Subject string
	Body    string
}

const dateLayout = "02-01-2006"

// ExpiringInsurance composes the reminder for a fire-insurance policy whose
// validity ends inside the lead window.
func ExpiringInsurance(to, condoName string, validTo time.Time) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Seguro por vencer - %s", condoName),
		Body: fmt.Sprintf(
			"El Seguro de Incendio Espacios Comunes del condominio %s vence el %s. Renueve la póliza antes de esa fecha para mantener el cumplimiento normativo.",
			condoName, validTo.Format(dateLayout),
		),
	}
}

// ExpiringCertification composes the reminder for a certification close to its
// expiry date.
func ExpiringCertification(to, condoName, kind string, validTo time.Time) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Certificación por vencer - %s", condoName),
		Body: fmt.Sprintf(
			"La certificación %q del condominio %s vence el %s. Gestione su renovación para mantener el cumplimiento normativo.",
			kind, condoName, validTo.Format(dateLayout),
		),
	}
}

// AssemblyDue composes the reminder that the annual ordinary assembly must be
// convened soon. lastDate is nil when no ordinary assembly is on record.
func AssemblyDue(to, condoName string, lastDate *time.Time) Message {
	body := fmt.Sprintf(
		"El condominio %s no registra asamblea ordinaria. Convoque una asamblea y adjunte el acta para cumplir la obligación anual.",
		condoName,
	)
	if lastDate != nil {
		body = fmt.Sprintf(
			"La última asamblea ordinaria del condominio %s fue el %s. Convoque la próxima asamblea antes de cumplirse el año.",
			condoName, lastDate.Format(dateLayout),
		)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Asamblea anual pendiente - %s", condoName),
		Body:    body,
	}
}

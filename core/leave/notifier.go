package leave

import (
	"context"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/rhazelina/qr-absence-sub000/core"
)

const (
	confirmationTemplate = "leave_confirmation"
	mailCategory         = "leave"
)

// MailNotifier sends leave confirmations to the school office.
// Stored evidence is attached when an opener is given.
type MailNotifier struct {
	mail       core.EmailService
	evidence   EvidenceOpener
	recipients []mail.Address
}

var _ Notifier = (*MailNotifier)(nil)

func NewMailNotifier(mailSvc core.EmailService, evidence EvidenceOpener, recipients ...string) (*MailNotifier, error) {
	n := &MailNotifier{mail: mailSvc, evidence: evidence}
	for _, rcpt := range recipients {
		addr, err := mail.ParseAddress(rcpt)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing leave recipient %q", rcpt)
		}
		n.recipients = append(n.recipients, *addr)
	}
	return n, nil
}

// NotifyLeave sends the confirmation even when the evidence cannot be attached;
// the attachment error is returned afterwards.
func (n *MailNotifier) NotifyLeave(ctx context.Context, sum Summary) error {
	if len(n.recipients) == 0 {
		return nil
	}
	msg := &core.EmailMessage{
		To:           n.recipients,
		Subject:      sum.KindLabel() + ": " + sum.SubjectPerson,
		Categories:   []string{mailCategory, string(sum.Kind)},
		TemplateName: confirmationTemplate,
		TemplateData: sum,
	}
	err := n.attachEvidence(ctx, msg, sum)
	n.mail.SendMessages(msg)
	return err
}

func (n *MailNotifier) attachEvidence(ctx context.Context, msg *core.EmailMessage, sum Summary) error {
	if n.evidence == nil || sum.EvidenceRef == "" {
		return nil
	}
	rc, err := n.evidence.Open(ctx, sum.EvidenceRef)
	if err != nil {
		return errors.Wrap(err, "opening evidence")
	}
	defer rc.Close()
	return errors.Wrap(msg.Attach(rc, sum.EvidenceName), "attaching evidence")
}

package common

import (
	"context"
	"log"
	"time"
	"vbs/src/lib"
	awslib "vbs/src/lib/aws"
	"vbs/src/lib/mailer"
	"vbs/src/types"
)

// EmailsToSendHandler delivers one queued envelope through sender. A
// returned error leaves the message on the queue for redelivery.
func EmailsToSendHandler(sender mailer.Sender, timeout time.Duration) types.Handler {
	return func(spayload string) error {
		m, err := mailer.ParseEnvelope(spayload)
		if err != nil {
			// Redelivering a malformed envelope cannot succeed.
			log.Printf("[MAILER] Dropping invalid envelope: %s\n", err.Error())
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := sender.Send(ctx, m); err != nil {
			log.Printf("[MAILER] error sending email: %s\n", err.Error())
			return err
		}
		log.Printf("[MAILER]: an email has been sent to %s\n", m.To)
		return nil
	}
}

// EmailsToSendConsumer listens on qname until ctx is done.
func EmailsToSendConsumer(ctx context.Context, client lib.SQSAPI, qname string, sender mailer.Sender, timeout time.Duration) error {
	c := awslib.NewSQSConsumer(client, qname, EmailsToSendHandler(sender, timeout))
	return c.Listen(ctx)
}

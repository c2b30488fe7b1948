package aws

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// SESSendRawMessage sends an already encoded MIME message.
func SESSendRawMessage(ctx context.Context, c SESAPI, from string, to []string, raw []byte) (string, error) {
	out, err := c.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(from),
		Destinations: to,
		RawMessage:   &types.RawMessage{Data: raw},
	})
	if err != nil {
		log.Printf("Error sending email: %s\n", err.Error())
		return "", err
	}
	id := aws.ToString(out.MessageId)
	log.Printf("Sent email with id: %s\n", id)
	return id, nil
}

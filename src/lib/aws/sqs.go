package aws

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
	"vbs/src/lib"
	"vbs/src/types"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type SQSConsumer struct {
	Name    string
	client  lib.SQSAPI
	handler types.Handler
	wait    int32
}

func NewSQSConsumer(client lib.SQSAPI, queue string, handler types.Handler) *SQSConsumer {
	return &SQSConsumer{
		Name:    queue,
		client:  client,
		handler: handler,
		wait:    20,
	}
}

// Listen polls the queue until ctx is done. A message is deleted only after
// its handler succeeds, so failed messages are redelivered by SQS.
func (s *SQSConsumer) Listen(ctx context.Context) error {
	qname := s.Name
	qurl, err := lib.SQSGetQueueURL(ctx, s.client, qname)
	if err != nil {
		return err
	}
	log.Printf("%s: Listening for messages...", qname)
	for {
		output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            qurl,
			WaitTimeSeconds:     s.wait,
			MaxNumberOfMessages: 10,
		})
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			log.Printf("[SQS] Error receiving messages: %s\n", err.Error())
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		for i := range output.Messages {
			s.process(ctx, qurl, &output.Messages[i])
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (s *SQSConsumer) process(ctx context.Context, qurl *string, m *sqstypes.Message) {
	if m.Body == nil {
		lib.SQSDeleteMessage(ctx, s.client, qurl, m)
		return
	}
	body := strings.Clone(*m.Body)
	if err := s.handler(body); err != nil {
		log.Printf("[%s] Handler failed, leaving message for redelivery: %s\n", s.Name, err.Error())
		return
	}
	lib.SQSDeleteMessage(ctx, s.client, qurl, m)
}

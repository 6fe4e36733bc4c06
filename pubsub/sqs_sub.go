/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package pubsub

import (
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	log "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
)

// TODO: should we need to generalize and abstract the implementation of a Subscriber?
//  This would be necessary if we were to implement a different message broker (e.g., Kafka)

type SqsSubscriber struct {
	logger          *log.Log
	client          *sqs.SQS
	events          chan<- api.EventRequest
	Timeout         time.Duration
	PollingInterval time.Duration
}

// NewSqsSubscriber will create a new `Subscriber` to listen to incoming
// stimulus events from an SQS `queue`.
func NewSqsSubscriber(eventsChannel chan<- api.EventRequest, sqsUrl *string) *SqsSubscriber {
	client := getSqsClient(sqsUrl)
	if client == nil {
		return nil
	}
	return &SqsSubscriber{
		logger:          log.NewLog("SQS-Sub"),
		client:          client,
		events:          eventsChannel,
		Timeout:         DefaultVisibilityTimeout,
		PollingInterval: DefaultPollingInterval,
	}
}

// SetLogLevel allows the SqsSubscriber to implement the log.Loggable interface.
func (s *SqsSubscriber) SetLogLevel(level log.LogLevel) {
	s.logger.Level = level
}

// Subscribe runs until signaled on the Done channel and listens for incoming events.
func (s *SqsSubscriber) Subscribe(topic string, done <-chan interface{}) {
	queueUrl := GetQueueUrl(s.client, topic)
	s.logger.Info("SQS Subscriber started for queue: %s", queueUrl)

	timeout := int64(s.Timeout.Seconds())
	for {
		select {
		case <-done:
			s.logger.Info("SQS Subscriber terminating")
			return
		default:
		}
		start := time.Now()
		s.logger.Trace("Polling SQS at %v", start)
		msgResult, err := s.client.ReceiveMessage(&sqs.ReceiveMessageInput{
			AttributeNames: []*string{
				aws.String(sqs.MessageSystemAttributeNameSentTimestamp),
			},
			MessageAttributeNames: []*string{
				aws.String(sqs.QueueAttributeNameAll),
			},
			QueueUrl:            &queueUrl,
			MaxNumberOfMessages: aws.Int64(10),
			VisibilityTimeout:   &timeout,
		})
		if err == nil {
			if len(msgResult.Messages) > 0 {
				s.logger.Debug("Got %d messages", len(msgResult.Messages))
			} else {
				s.logger.Trace("no messages in queue")
			}
			for _, msg := range msgResult.Messages {
				s.logger.Trace("processing %v", msg.String())
				go s.ProcessMessage(msg, &queueUrl)
			}
		} else {
			s.logger.Error(err.Error())
		}
		timeLeft := s.PollingInterval - time.Since(start)
		if timeLeft > 0 {
			s.logger.Trace("sleeping for %v", timeLeft)
			time.Sleep(timeLeft)
		}
	}
}

func (s *SqsSubscriber) ProcessMessage(msg *sqs.Message, queueUrl *string) {
	s.logger.Trace("Processing Message %v", msg.MessageId)

	timestamp := msg.Attributes[sqs.MessageSystemAttributeNameSentTimestamp]
	if timestamp == nil {
		s.logger.Warn("No Timestamp in received event, using current time")
		timestamp = aws.String(strconv.FormatInt(time.Now().UnixMilli(), 10))
	}

	// The body of the message (the command) and the destination (the machine
	// ID) are mandatory; the Event ID is optional and filled in if missing.
	destId, hasDest := msg.MessageAttributes["DestinationId"]
	if msg.Body != nil && hasDest {
		message := EventMessage{
			Destination: *destId.StringValue,
			Command:     *msg.Body,
		}
		if eventId, hasId := msg.MessageAttributes["EventId"]; hasId {
			message.EventId = *eventId.StringValue
		}
		if sender := msg.MessageAttributes["Sender"]; sender != nil {
			message.Sender = *sender.StringValue
		}
		// An SQS Message timestamp is Unix milliseconds from epoch.
		ts, _ := strconv.ParseInt(*timestamp, 10, 64)
		message.EventTimestamp = time.UnixMilli(ts)

		request, err := message.ToRequest()
		if err != nil {
			s.logger.Error("cannot convert message %s: %v", message.String(), err)
		} else {
			s.events <- request
		}
	} else {
		s.logger.Error("No Destination ID or command in %v", msg.String())
	}

	s.logger.Debug("Removing message %v from SQS", *msg.MessageId)
	if _, err := s.client.DeleteMessage(&sqs.DeleteMessageInput{
		QueueUrl:      queueUrl,
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		s.logger.Error("Failed to remove message %v from SQS: %v", msg.MessageId, err)
	}
	s.logger.Trace("Message %v removed", msg.MessageId)
}

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
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	log "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
)

type SqsPublisher struct {
	logger        *log.Log
	client        *sqs.SQS
	notifications <-chan api.EventResponse
}

// getSqsClient connects to AWS and obtains an SQS client; passing `nil` as the
// `sqsUrl` will connect by default to AWS; use a different (possibly local)
// URL for a LocalStack test deployment.
func getSqsClient(sqsUrl *string) *sqs.SQS {
	var sess *session.Session
	if sqsUrl == nil {
		sess = session.Must(session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
		}))
	} else {
		region, found := os.LookupEnv("AWS_REGION")
		if !found {
			fmt.Printf("No AWS Region configured, cannot connect to SQS provider at %s\n",
				*sqsUrl)
			return nil
		}
		sess = session.Must(session.NewSessionWithOptions(session.Options{
			SharedConfigState: session.SharedConfigEnable,
			Config: aws.Config{
				Endpoint: sqsUrl,
				Region:   &region,
			},
		}))
	}
	return sqs.New(sess)
}

// GetQueueUrl retrieves from AWS SQS the URL for the queue, given the topic name.
func GetQueueUrl(client *sqs.SQS, topic string) string {
	out, err := client.GetQueueUrl(&sqs.GetQueueUrlInput{
		QueueName: &topic,
	})
	if err != nil || out.QueueUrl == nil {
		// From the Google School: fail fast and noisily from an unrecoverable error
		log.RootLog.Fatal(fmt.Errorf("cannot get SQS Queue URL for topic %s: %v", topic, err))
	}
	return *out.QueueUrl
}

// NewSqsPublisher will create a new `Publisher` to send outcome notifications
// received on the `notificationsChannel` to an SQS queue.
func NewSqsPublisher(notificationsChannel <-chan api.EventResponse, awsUrl *string) *SqsPublisher {
	client := getSqsClient(awsUrl)
	if client == nil {
		return nil
	}
	return &SqsPublisher{
		logger:        log.NewLog("SQS-Pub"),
		client:        client,
		notifications: notificationsChannel,
	}
}

// SetLogLevel allows the SqsPublisher to implement the log.Loggable interface.
func (s *SqsPublisher) SetLogLevel(level log.LogLevel) {
	if s == nil {
		fmt.Println("WARN: attempting to set log level on nil Publisher")
		return
	}
	s.logger.Level = level
}

// Publish sends every outcome notification to the `topic` queue, encoded as
// JSON, until the notifications channel is closed.
func (s *SqsPublisher) Publish(topic string) {
	queueUrl := GetQueueUrl(s.client, topic)
	s.logger = log.NewLog(fmt.Sprintf("SQS-Pub{%s}", topic))
	s.logger.Info("SQS Publisher started for queue: %s", queueUrl)
	for response := range s.notifications {
		delay := int64(0)
		s.logger.Debug("[%s] %s", response.String(), queueUrl)
		msgResult, err := s.client.SendMessage(&sqs.SendMessageInput{
			DelaySeconds: &delay,
			MessageBody:  aws.String(response.String()),
			QueueUrl:     &queueUrl,
		})
		if err != nil {
			s.logger.Error("Cannot publish notification (%s): %v", response.String(), err)
			continue
		}
		s.logger.Debug("Notification successfully posted to SQS: %s", *msgResult.MessageId)
	}
	s.logger.Info("SQS Publisher exiting")
}

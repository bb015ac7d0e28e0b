package main

import (
	"context"

	"github.com/turtacn/ClauseWise/internal/application/reporting"
	"github.com/turtacn/ClauseWise/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/common"
)

// newJobHandler decodes analysis.requested events and runs them through the
// report service. Any returned error goes to the consumer's retry policy and,
// once retries are spent, to the dead-letter topic.
func newJobHandler(reports reporting.Service, logger logging.Logger) common.MessageHandler {
	return func(ctx context.Context, msg *common.Message) error {
		env, err := kafka.MessageToEventEnvelope(msg)
		if err != nil {
			return err
		}
		if env.EventType != kafka.EventAnalysisRequested {
			logger.Warn("Ignoring unexpected event",
				logging.String("event_type", env.EventType),
				logging.String("topic", msg.Topic))
			return nil
		}
		if env.TraceID != "" {
			ctx = logging.WithRequestID(ctx, env.TraceID)
		}

		var job kafka.AnalysisRequestedPayload
		if err := env.DecodePayload(&job); err != nil {
			return err
		}
		if err := reports.Process(ctx, job); err != nil {
			logger.WithContext(ctx).Warn("Job failed",
				logging.String(logging.FieldReportID, job.ReportID),
				logging.String(logging.FieldErrorCode, string(errors.GetCode(err))),
				logging.Err(err))
			return err
		}
		return nil
	}
}

//Personal.AI order the ending

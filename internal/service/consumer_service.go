package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"jane-proxy-be/internal/dto"
	"jane-proxy-be/internal/entity"
	"jane-proxy-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.LicenseEventMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal license event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	details := string(msg.Payload)
	auditEntry := &entity.AuditLog{
		Id:        uuid.New(),
		EventType: payload.EventType,
		UserId:    payload.UserId,
		Details:   &details,
		CreatedAt: time.Now(),
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction for audit log: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.AuditLogRepository().Create(ctx, auditEntry); err != nil {
		log.Printf("[ERROR] Failed to write audit log for order %s: %v", payload.OrderId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit audit log: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Audit log recorded: %s for user %s", payload.EventType, payload.UserId)
	msg.Ack()
}

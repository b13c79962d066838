package service

import (
	"context"
	"crypto/sha512"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"jane-proxy-be/internal/dto"
	"jane-proxy-be/internal/entity"
	"jane-proxy-be/internal/pkg/logger"
	"jane-proxy-be/internal/repository/specification"
	"jane-proxy-be/internal/repository/unitofwork"
	"jane-proxy-be/pkg/events"
	pktNats "jane-proxy-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// licensePeriod is how long a successful payment keeps the license active.
const licensePeriod = 30 * 24 * time.Hour

type ILicenseService interface {
	GetLicense(ctx context.Context, userId string) (*dto.LicenseResponse, error)
	CreateCheckout(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error
}

type licenseService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	log              logger.ILogger
}

func NewLicenseService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ILicenseService {
	return &licenseService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		log:              log,
	}
}

func (s *licenseService) GetLicense(ctx context.Context, userId string) (*dto.LicenseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	license, err := uow.LicenseRepository().FindByUserId(ctx, userId)
	if err != nil {
		return nil, err
	}
	if license == nil {
		return &dto.LicenseResponse{
			UserId: userId,
			Active: false,
			Status: string(entity.LicenseStatusNone),
		}, nil
	}

	return &dto.LicenseResponse{
		UserId:           license.UserId,
		Active:           license.Active(),
		Status:           string(license.Status),
		CurrentPeriodEnd: license.CurrentPeriodEnd,
		Product:          license.Product,
	}, nil
}

func (s *licenseService) CreateCheckout(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	orderId := uuid.New()
	now := time.Now()

	order := &entity.BillingOrder{
		Id:        orderId,
		UserId:    req.UserId,
		Product:   req.Product,
		Amount:    req.Amount,
		Status:    entity.OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.BillingOrderRepository().Create(ctx, order); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// External payment call stays outside the DB transaction.
	var sClient snap.Client
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_IS_PRODUCTION") == "true" {
		env = midtrans.Production
	}
	sClient.New(serverKey, env)

	finishRedirectURL := req.SuccessUrl
	if finishRedirectURL == "" {
		finishRedirectURL = fmt.Sprintf("%s/app?payment=success", os.Getenv("FRONTEND_URL"))
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderId.String(),
			GrossAmt: req.Amount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Callbacks: &snap.Callbacks{
			Finish: finishRedirectURL,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.Product,
				Price: req.Amount,
				Qty:   1,
				Name:  req.Product,
			},
		},
		EnabledPayments: snap.AllSnapPaymentType,
	}

	snapResp, midErr := sClient.CreateTransaction(snapReq)
	if midErr != nil {
		return nil, fmt.Errorf("midtrans error: %v", midErr.GetMessage())
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.TypeCheckoutCreated,
			Data: map[string]interface{}{
				"order_id":    orderId,
				"user_id":     req.UserId,
				"product":     req.Product,
				"amount":      req.Amount,
				"occurred_at": now,
			},
			OccurredAt: now,
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("billing", "Failed to publish CHECKOUT_CREATED event", map[string]interface{}{
				"order_id": orderId.String(),
				"error":    err.Error(),
			})
		}
	}

	return &dto.CheckoutResponse{
		OrderId:         orderId,
		SnapToken:       snapResp.Token,
		SnapRedirectUrl: snapResp.RedirectURL,
	}, nil
}

func (s *licenseService) HandleNotification(ctx context.Context, req *dto.MidtransWebhookRequest) error {
	serverKey := os.Getenv("MIDTRANS_SERVER_KEY")
	if serverKey == "" {
		s.log.Error("billing", "MIDTRANS_SERVER_KEY not configured", nil)
		return fmt.Errorf("server configuration error")
	}

	// Midtrans signature = SHA512(order_id + status_code + gross_amount + server_key)
	signatureInput := req.OrderId + req.StatusCode + req.GrossAmount + serverKey
	expectedSignature := fmt.Sprintf("%x", sha512.Sum512([]byte(signatureInput)))

	if req.SignatureKey != expectedSignature {
		s.log.Warn("billing", "Webhook signature mismatch", map[string]interface{}{
			"order_id": req.OrderId,
		})
		return fmt.Errorf("invalid signature")
	}

	orderId, err := uuid.Parse(req.OrderId)
	if err != nil {
		return fmt.Errorf("invalid order id format")
	}

	var newOrderStatus entity.OrderStatus
	var newLicenseStatus entity.LicenseStatus

	switch req.TransactionStatus {
	case "capture", "settlement":
		newOrderStatus = entity.OrderStatusPaid
		newLicenseStatus = entity.LicenseStatusActive
	case "deny", "cancel", "expire":
		newOrderStatus = entity.OrderStatusFailed
		newLicenseStatus = entity.LicenseStatusInactive
	case "pending":
		return nil
	default:
		s.log.Info("billing", "Unhandled transaction status, no action taken", map[string]interface{}{
			"order_id": req.OrderId,
			"status":   req.TransactionStatus,
		})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	order, err := uow.BillingOrderRepository().FindOne(ctx, specification.ByID{ID: orderId})
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("order not found")
	}

	now := time.Now()

	if order.Status != newOrderStatus {
		order.Status = newOrderStatus
		order.UpdatedAt = now
		if err := uow.BillingOrderRepository().Update(ctx, order); err != nil {
			return err
		}
	}

	license := &entity.License{
		UserId:    order.UserId,
		Status:    newLicenseStatus,
		Product:   order.Product,
		UpdatedAt: now,
	}
	if newLicenseStatus == entity.LicenseStatusActive {
		license.CurrentPeriodEnd = now.Add(licensePeriod)
	}

	if err := uow.LicenseRepository().Upsert(ctx, license); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Info("billing", "License reconciled from payment notification", map[string]interface{}{
		"order_id": orderId.String(),
		"user_id":  order.UserId,
		"status":   string(newLicenseStatus),
	})

	s.emitLicenseUpdated(ctx, order, newLicenseStatus, now)
	return nil
}

func (s *licenseService) emitLicenseUpdated(ctx context.Context, order *entity.BillingOrder, status entity.LicenseStatus, at time.Time) {
	msgPayload := dto.LicenseEventMessage{
		EventType:  events.TypeLicenseUpdated,
		UserId:     order.UserId,
		OrderId:    order.Id,
		Status:     string(status),
		Product:    order.Product,
		OccurredAt: at,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		s.log.Error("billing", "Failed to marshal license event", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		s.log.Warn("billing", "Failed to publish license event to internal bus", map[string]interface{}{
			"order_id": order.Id.String(),
			"error":    err.Error(),
		})
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: events.TypeLicenseUpdated,
			Data: map[string]interface{}{
				"order_id":    order.Id,
				"user_id":     order.UserId,
				"product":     order.Product,
				"status":      string(status),
				"occurred_at": at,
			},
			OccurredAt: at,
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.log.Warn("billing", "Failed to publish LICENSE_UPDATED event", map[string]interface{}{
				"order_id": order.Id.String(),
				"error":    err.Error(),
			})
		}
	}
}

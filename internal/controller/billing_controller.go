package controller

import (
	"jane-proxy-be/internal/dto"
	"jane-proxy-be/internal/pkg/serverutils"
	"jane-proxy-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBillingController interface {
	RegisterRoutes(r fiber.Router)
	GetLicense(ctx *fiber.Ctx) error
	Checkout(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
}

type billingController struct {
	service service.ILicenseService
}

func NewBillingController(service service.ILicenseService) IBillingController {
	return &billingController{service: service}
}

func (c *billingController) RegisterRoutes(r fiber.Router) {
	r.Get("/license", c.GetLicense)

	h := r.Group("/billing")
	h.Post("/checkout", c.Checkout)
	h.Post("/webhook", c.Webhook)
}

func (c *billingController) GetLicense(ctx *fiber.Ctx) error {
	userId := ctx.Query("userId")
	if userId == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "userId is required"))
	}

	res, err := c.service.GetLicense(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *billingController) Checkout(ctx *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.CreateCheckout(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Checkout created", res))
}

func (c *billingController) Webhook(ctx *fiber.Ctx) error {
	var req dto.MidtransWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.SendStatus(fiber.StatusBadRequest)
	}

	if err := c.service.HandleNotification(ctx.Context(), &req); err != nil {
		// Midtrans retries on non-2xx responses.
		return ctx.SendStatus(fiber.StatusInternalServerError)
	}
	return ctx.SendStatus(fiber.StatusOK)
}

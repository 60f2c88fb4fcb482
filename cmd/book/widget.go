package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"slotbook/internal/gateway"
	"slotbook/internal/orchestrator"
)

// consoleWidget stands in for the hosted checkout. With a signing secret it simulates
// the gateway; without one the customer pastes the ids the gateway returned.
type consoleWidget struct {
	in     *bufio.Reader
	out    io.Writer
	secret string
}

func (w *consoleWidget) Open(ctx context.Context, req orchestrator.WidgetRequest) (orchestrator.WidgetOutcome, error) {
	fmt.Fprintf(w.out, "\n-- Payment (%s) --\n", req.Key)
	fmt.Fprintf(w.out, "Order %s: %s %.2f for %s (%s)\n",
		req.OrderID, req.Currency, float64(req.Amount)/100, req.Prefill.Name, req.Prefill.Contact)

	if w.secret != "" {
		answer, err := w.ask(ctx, "Pay now? [y]es / [f]ail / [c]ancel: ")
		if err != nil {
			return orchestrator.Dismissed(), err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			paymentID := "pay_" + strings.TrimPrefix(req.OrderID, "order_")
			return orchestrator.Succeeded(orchestrator.GatewayPayment{
				OrderID:   req.OrderID,
				PaymentID: paymentID,
				Signature: gateway.Sign(w.secret, req.OrderID, paymentID),
			}), nil
		case "f", "fail":
			return orchestrator.FailedWith("card declined"), nil
		default:
			return orchestrator.Dismissed(), nil
		}
	}

	paymentID, err := w.ask(ctx, "Payment id (empty to cancel): ")
	if err != nil || paymentID == "" {
		return orchestrator.Dismissed(), err
	}
	signature, err := w.ask(ctx, "Signature: ")
	if err != nil || signature == "" {
		return orchestrator.Dismissed(), err
	}
	return orchestrator.Succeeded(orchestrator.GatewayPayment{
		OrderID:   req.OrderID,
		PaymentID: paymentID,
		Signature: signature,
	}), nil
}

func (w *consoleWidget) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(w.out, prompt)
	line, err := w.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
)

// Gateway talks to the card processor's REST API.
type Gateway struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Client       *http.Client

	tokenMutex  sync.RWMutex
	token       string
	tokenExpiry time.Time
}

func NewGateway(baseURL, clientID, clientSecret string) *Gateway {
	return &Gateway{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Client:       &http.Client{Timeout: 10 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type cardPayload struct {
	HolderName      string `json:"holder_name"`
	Number          string `json:"number"`
	ExpirationMonth int    `json:"exp_month"`
	ExpirationYear  int    `json:"exp_year"`
	Code            string `json:"cvc"`
}

type cardRequest struct {
	Card              cardPayload `json:"card"`
	CustomerReference string      `json:"customer_reference"`
	CustomerEmail     string      `json:"customer_email"`
}

type cardResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Brand          string `json:"brand"`
	Last4          string `json:"last4"`
	DeclineField   string `json:"decline_field"`
	DeclineMessage string `json:"decline_message"`
}

type chargeRequest struct {
	Amount      int64        `json:"amount"`
	Currency    string       `json:"currency"`
	Description string       `json:"description"`
	Reference   string       `json:"reference"`
	Source      string       `json:"source,omitempty"`
	Card        *cardPayload `json:"card,omitempty"`
}

type chargeResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	FailureField   string `json:"failure_field"`
	FailureMessage string `json:"failure_message"`
}

func (g *Gateway) accessToken(ctx context.Context) (string, error) {
	g.tokenMutex.RLock()
	if g.token != "" && time.Now().Before(g.tokenExpiry) {
		token := g.token
		g.tokenMutex.RUnlock()
		return token, nil
	}
	g.tokenMutex.RUnlock()

	g.tokenMutex.Lock()
	defer g.tokenMutex.Unlock()

	if g.token != "" && time.Now().Before(g.tokenExpiry) {
		return g.token, nil
	}

	log.Println("Fetching new payment gateway access token...")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/v1/oauth2/token", strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.ClientID, g.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request gateway token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway token API returned non-200 status: %s", resp.Status)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode gateway token: %w", err)
	}

	// refresh a minute early so a token never expires mid-request
	ttl := time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute
	if ttl < 0 {
		ttl = 0
	}
	g.token = tokenResp.AccessToken
	g.tokenExpiry = time.Now().Add(ttl)
	return g.token, nil
}

func (g *Gateway) post(ctx context.Context, path, idempotencyKey string, payload, out interface{}) (int, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return 0, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send gateway request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read gateway response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusPaymentRequired:
	default:
		log.Printf("Payment gateway error on %s: %s", path, string(respBody))
		return resp.StatusCode, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to unmarshal gateway response: %w", err)
	}
	return resp.StatusCode, nil
}

func (g *Gateway) AuthorizeCard(ctx context.Context, user models.User, card CardDetails) (Authorization, error) {
	payload := cardRequest{
		Card:              toCardPayload(card),
		CustomerReference: user.ID.String(),
		CustomerEmail:     user.Email,
	}

	var resp cardResponse
	if _, err := g.post(ctx, "/v1/cards", "", payload, &resp); err != nil {
		return Authorization{}, err
	}

	if resp.Status != "approved" {
		return Authorization{Approved: false, Reasons: declineReasons(resp.DeclineField, resp.DeclineMessage)}, nil
	}
	return Authorization{Approved: true, Token: resp.ID, Brand: resp.Brand, Last4: resp.Last4}, nil
}

func (g *Gateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	payload := chargeRequest{
		Amount:      int64(req.Amount),
		Currency:    req.Currency,
		Description: req.Description,
		Reference:   req.InvoiceID.String(),
		Source:      req.CardToken,
	}
	if req.Card != nil {
		card := toCardPayload(*req.Card)
		payload.Card = &card
	}

	var resp chargeResponse
	if _, err := g.post(ctx, "/v1/charges", req.InvoiceID.String(), payload, &resp); err != nil {
		return ChargeResult{}, err
	}

	if resp.Status != "succeeded" {
		log.Printf("Charge for invoice %s declined: %s", req.InvoiceID, resp.FailureMessage)
		return ChargeResult{Paid: false, Reasons: declineReasons(resp.FailureField, resp.FailureMessage)}, nil
	}
	return ChargeResult{Paid: true, TransactionID: resp.ID}, nil
}

func toCardPayload(card CardDetails) cardPayload {
	return cardPayload{
		HolderName:      card.HolderName,
		Number:          SanitizeCardNumber(card.Number),
		ExpirationMonth: card.ExpirationMonth,
		ExpirationYear:  card.ExpirationYear,
		Code:            card.Code,
	}
}

func declineReasons(field, message string) map[string]string {
	if field == "" {
		field = "card_number"
	}
	if message == "" {
		message = "Your card was declined."
	}
	return map[string]string{field: message}
}

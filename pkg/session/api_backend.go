package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/entities"
)

// apiBackend speaks the validation API's uniform {success, data, error}
// envelope over HTTP. A response is never trusted without checking success.
type apiBackend struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewAPIBackend builds a Backend against the REST API at baseURL
// (e.g. "https://validator.example.com/api/v1"). The bearer token is attached
// to every request.
func NewAPIBackend(baseURL, token string) Backend {
	return &apiBackend{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (b *apiBackend) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope domain.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if !envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = envelope.Message
		}
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("%s %s: %s", method, path, msg)
	}
	if out != nil {
		if len(envelope.Data) == 0 {
			return errors.New("response envelope carries no data")
		}
		return json.Unmarshal(envelope.Data, out)
	}
	return nil
}

func (b *apiBackend) FetchSession(ctx context.Context, workLogID int64) (*domain.ValidationSessionSnapshot, error) {
	var snap domain.ValidationSessionSnapshot
	if err := b.do(ctx, http.MethodGet, fmt.Sprintf("/validation-session/%d", workLogID), nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (b *apiBackend) CreateItem(ctx context.Context, item *entities.WorkItem) (int64, error) {
	var res domain.CreateWorkItemResponse
	if err := b.do(ctx, http.MethodPost, "/items", item, &res); err != nil {
		return 0, err
	}
	if res.Item == nil {
		return 0, errors.New("create item: response carries no item")
	}
	return res.Item.ID, nil
}

func (b *apiBackend) UpdateItem(ctx context.Context, item *entities.WorkItem) error {
	return b.do(ctx, http.MethodPatch, fmt.Sprintf("/items/%d", item.ID), item, nil)
}

func (b *apiBackend) DeleteItem(ctx context.Context, id int64) error {
	return b.do(ctx, http.MethodDelete, fmt.Sprintf("/items/%d", id), nil, nil)
}

func (b *apiBackend) CreateAnnotation(ctx context.Context, annotation *entities.WorkAnnotation) (int64, error) {
	var res domain.CreateAnnotationResponse
	if err := b.do(ctx, http.MethodPost, "/annotations", annotation, &res); err != nil {
		return 0, err
	}
	if res.Annotation == nil {
		return 0, errors.New("create annotation: response carries no annotation")
	}
	return res.Annotation.ID, nil
}

func (b *apiBackend) UpdateAnnotation(ctx context.Context, annotation *entities.WorkAnnotation) error {
	return b.do(ctx, http.MethodPatch, fmt.Sprintf("/annotations/%d", annotation.ID), annotation, nil)
}

func (b *apiBackend) DeleteAnnotation(ctx context.Context, id int64) error {
	return b.do(ctx, http.MethodDelete, fmt.Sprintf("/annotations/%d", id), nil, nil)
}

func (b *apiBackend) Complete(ctx context.Context, workLogID int64) error {
	return b.do(ctx, http.MethodPost, "/validation/complete", domain.WorkLogRequest{WorkLogID: workLogID}, nil)
}

func (b *apiBackend) Abandon(ctx context.Context, workLogID int64) error {
	return b.do(ctx, http.MethodPost, "/validation/abandon", domain.WorkLogRequest{WorkLogID: workLogID}, nil)
}

func (b *apiBackend) NextStep(ctx context.Context, workLogID int64, skip bool) (*domain.NextStepResponse, error) {
	var res domain.NextStepResponse
	req := domain.NextStepRequest{WorkLogID: workLogID, Skip: skip}
	if err := b.do(ctx, http.MethodPost, "/validation/next-step", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (b *apiBackend) Reset(ctx context.Context, workLogID int64) (*domain.ResetResponse, error) {
	var res domain.ResetResponse
	if err := b.do(ctx, http.MethodPost, fmt.Sprintf("/validation/%d/reset", workLogID), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (b *apiBackend) Heartbeat(ctx context.Context, workLogID int64) error {
	return b.do(ctx, http.MethodPost, "/validation/heartbeat", domain.WorkLogRequest{WorkLogID: workLogID}, nil)
}

package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// keyAliases maps alternative field names the backend uses to the names the
// domain model expects. An alias is only applied when the canonical key is absent.
var keyAliases = map[string]string{
	"_id":         "id",
	"createdAt":   "created_at",
	"isActive":    "is_active",
	"isPublished": "is_published",
	"imageUrl":    "image_url",
	"url":         "image_url",
}

// pagination is the wire shape of the backend's pagination block.
type pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// decodeList normalises a list response into a ListResult. Two shapes are
// accepted: a bare JSON array, or an object carrying the array under "data"
// (or any other array-valued key) with an optional "pagination" block.
func decodeList[T any](endpoint string, raw json.RawMessage) (model.ListResult[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return model.ListResult[T]{Items: []T{}, Page: model.SinglePage(0), Shape: model.ShapeUnpaginated}, nil
	}

	if trimmed[0] == '[' {
		items, err := decodeRecords[T](endpoint, trimmed)
		if err != nil {
			return model.ListResult[T]{}, err
		}
		return model.ListResult[T]{Items: items, Page: model.SinglePage(len(items)), Shape: model.ShapeUnpaginated}, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return model.ListResult[T]{}, shapeError(endpoint, err)
	}

	itemsRaw, ok := envelope["data"]
	if !ok || !isArray(itemsRaw) {
		itemsRaw = nil
		for key, v := range envelope {
			if key != "pagination" && isArray(v) {
				itemsRaw = v
				break
			}
		}
	}
	if itemsRaw == nil {
		return model.ListResult[T]{}, shapeError(endpoint, fmt.Errorf("no list found in response"))
	}

	items, err := decodeRecords[T](endpoint, itemsRaw)
	if err != nil {
		return model.ListResult[T]{}, err
	}

	pageRaw, ok := envelope["pagination"]
	if !ok || bytes.Equal(bytes.TrimSpace(pageRaw), []byte("null")) {
		return model.ListResult[T]{Items: items, Page: model.SinglePage(len(items)), Shape: model.ShapeUnpaginated}, nil
	}

	var p pagination
	if err := json.Unmarshal(pageRaw, &p); err != nil {
		return model.ListResult[T]{}, shapeError(endpoint, err)
	}

	return model.ListResult[T]{
		Items: items,
		Page:  model.NewPageDescriptor(p.CurrentPage, p.TotalPages, p.TotalItems, p.ItemsPerPage),
		Shape: model.ShapePaginated,
	}, nil
}

// decodeItem decodes a single record that may be bare or wrapped in {"data": {...}}.
func decodeItem[T any](endpoint string, raw json.RawMessage) (*T, error) {
	obj := unwrapData(raw)
	record, err := decodeRecord[T](endpoint, obj)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// unwrapData returns the "data" member when raw is an object whose data is an
// object, and raw itself otherwise.
func unwrapData(raw json.RawMessage) json.RawMessage {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return raw
	}
	if data, ok := envelope["data"]; ok {
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			return data
		}
	}
	return raw
}

func decodeRecords[T any](endpoint string, raw json.RawMessage) ([]T, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, shapeError(endpoint, err)
	}

	items := make([]T, 0, len(elems))
	for _, elem := range elems {
		record, err := decodeRecord[T](endpoint, elem)
		if err != nil {
			return nil, err
		}
		items = append(items, record)
	}
	return items, nil
}

// decodeRecord applies key aliases to a JSON object and decodes it into T.
func decodeRecord[T any](endpoint string, raw json.RawMessage) (T, error) {
	var record T

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return record, shapeError(endpoint, err)
	}
	for alias, canonical := range keyAliases {
		if v, ok := fields[alias]; ok {
			if _, exists := fields[canonical]; !exists {
				fields[canonical] = v
			}
			delete(fields, alias)
		}
	}

	normalised, err := json.Marshal(fields)
	if err != nil {
		return record, shapeError(endpoint, err)
	}
	if err := json.Unmarshal(normalised, &record); err != nil {
		return record, shapeError(endpoint, err)
	}
	return record, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func shapeError(endpoint string, err error) error {
	return &driven.Error{
		Kind:     driven.KindProtocol,
		Endpoint: endpoint,
		Message:  fmt.Sprintf("the API returned an unexpected response shape for %s", endpoint),
		Err:      err,
	}
}

// unwrapDataArray returns the "data" member when raw is an object whose data
// is an array, and raw itself otherwise.
func unwrapDataArray(raw json.RawMessage) json.RawMessage {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return raw
	}
	if data, ok := envelope["data"]; ok && isArray(data) {
		return data
	}
	return raw
}

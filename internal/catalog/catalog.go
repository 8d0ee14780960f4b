// Package catalog shapes cached dataset documents into the collections and
// entities the API returns.
//
// Documents come from the gateway and are shared; every function here copies
// an entity before annotating it.
package catalog

import (
	"errors"
	"fmt"
	"sort"
)

// ErrSectionMissing reports a document without the expected collection.
var ErrSectionMissing = errors.New("section missing from dataset")

// NotFoundError reports a lookup that matched nothing.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Ports merges active and archived ports, flagging each with is-userstyle and
// is-archived.
func Ports(doc any) []any {
	obj := asObject(doc)
	out := make([]any, 0)
	for _, port := range asArray(obj["ports"]) {
		out = append(out, annotate(port, map[string]any{"is-userstyle": false, "is-archived": false}))
	}
	for _, port := range asArray(obj["archived-ports"]) {
		out = append(out, annotate(port, map[string]any{"is-userstyle": false, "is-archived": true}))
	}
	return out
}

// Port finds a port by key, searching active ports before archived ones.
func Port(doc any, key string) (map[string]any, error) {
	obj := asObject(doc)
	if port := findBy(asArray(obj["ports"]), "key", key); port != nil {
		return annotate(port, map[string]any{"is-archived": false}), nil
	}
	if port := findBy(asArray(obj["archived-ports"]), "key", key); port != nil {
		return annotate(port, map[string]any{"is-archived": true}), nil
	}
	return nil, &NotFoundError{Kind: "Port", ID: key}
}

// Collaborators lists the collaborators section of the ports document.
func Collaborators(doc any) ([]any, error) {
	return section(doc, "collaborators")
}

// Collaborator finds a collaborator by username.
func Collaborator(doc any, username string) (map[string]any, error) {
	if c := findBy(asArray(asObject(doc)["collaborators"]), "username", username); c != nil {
		return annotate(c, nil), nil
	}
	return nil, &NotFoundError{Kind: "Collaborator", ID: username}
}

// Showcases lists the showcases section of the ports document.
func Showcases(doc any) ([]any, error) {
	return section(doc, "showcases")
}

// Categories lists the categories document, which is a top-level array.
func Categories(doc any) []any {
	list := asArray(doc)
	if list == nil {
		return []any{}
	}
	return list
}

// Category finds a category by key.
func Category(doc any, key string) (map[string]any, error) {
	if c := findBy(asArray(doc), "key", key); c != nil {
		return annotate(c, nil), nil
	}
	return nil, &NotFoundError{Kind: "Category", ID: key}
}

// Userstyles flattens the userstyles map into a list ordered by key, adding
// key and is-userstyle to each entry.
func Userstyles(doc any) []any {
	styles := asObject(asObject(doc)["userstyles"])
	keys := make([]string, 0, len(styles))
	for key := range styles {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys))
	for _, key := range keys {
		out = append(out, annotate(styles[key], map[string]any{"key": key, "is-userstyle": true}))
	}
	return out
}

// Userstyle finds a userstyle by its map key.
func Userstyle(doc any, key string) (map[string]any, error) {
	styles := asObject(asObject(doc)["userstyles"])
	style, ok := styles[key]
	if !ok {
		return nil, &NotFoundError{Kind: "Userstyle", ID: key}
	}
	return annotate(style, map[string]any{"key": key, "is-userstyle": true}), nil
}

func section(doc any, name string) ([]any, error) {
	list, ok := asObject(doc)[name].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSectionMissing, name)
	}
	return list, nil
}

func findBy(items []any, field, value string) map[string]any {
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := obj[field].(string); ok && s == value {
			return obj
		}
	}
	return nil
}

// annotate returns a shallow copy of item with extra fields set. Non-object
// items are wrapped so the extra fields still have somewhere to live.
func annotate(item any, extra map[string]any) map[string]any {
	src, ok := item.(map[string]any)
	if !ok {
		src = map[string]any{"value": item}
	}
	out := make(map[string]any, len(src)+len(extra))
	for k, v := range src {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func asObject(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

func asArray(v any) []any {
	list, _ := v.([]any)
	return list
}

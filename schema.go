package topix

import (
	"fmt"
	"reflect"
	"strings"
)

const tagKey = "topix"

// schemaMeta holds parsed struct tag metadata, cached per Topics handle.
type schemaMeta struct {
	typ reflect.Type

	// Field index in the struct for each role.
	idIdx        int
	textIdx      int // -1 if not present
	embeddingIdx int // -1 if not present
}

// parseSchema reflects on T and extracts topix struct tag metadata.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("topix: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, idIdx: -1, textIdx: -1, embeddingIdx: -1}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}

	return validateSchema(meta, t)
}

// applyTag processes a single struct field's topix tag.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	// Either a bare role ("id") or a mapped name with a role ("body,text").
	parts := strings.SplitN(tag, ",", 2)
	modifier := parts[0]
	if len(parts) == 2 {
		modifier = parts[1]
	}

	switch modifier {
	case "id":
		if meta.idIdx != -1 {
			return fmt.Errorf("topix: duplicate id tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("topix: id field %s must be a string", f.Name)
		}
		meta.idIdx = idx
	case "text":
		if meta.textIdx != -1 {
			return fmt.Errorf("topix: duplicate text tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.String {
			return fmt.Errorf("topix: text field %s must be a string", f.Name)
		}
		meta.textIdx = idx
	case "embedding":
		if meta.embeddingIdx != -1 {
			return fmt.Errorf("topix: duplicate embedding tag on field %s", f.Name)
		}
		if f.Type != reflect.TypeOf([]float32(nil)) {
			return fmt.Errorf("topix: embedding field %s must be []float32", f.Name)
		}
		meta.embeddingIdx = idx
	default:
		return fmt.Errorf("topix: unknown modifier %q on field %s", modifier, f.Name)
	}
	return nil
}

func validateSchema(meta *schemaMeta, t reflect.Type) (*schemaMeta, error) {
	if meta.idIdx == -1 {
		return nil, fmt.Errorf("topix: no field with `topix:\"id\"` tag in %s", t)
	}
	if meta.textIdx == -1 && meta.embeddingIdx == -1 {
		return nil, fmt.Errorf("topix: %s needs a text or embedding field", t)
	}
	return meta, nil
}

// toDocument converts a typed struct to Document using schema metadata.
func (m *schemaMeta) toDocument(item any) (Document, error) {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	doc := Document{ID: v.Field(m.idIdx).String()}
	if m.textIdx != -1 {
		doc.Text = v.Field(m.textIdx).String()
	}
	if m.embeddingIdx != -1 {
		emb, ok := v.Field(m.embeddingIdx).Interface().([]float32)
		if !ok {
			return Document{}, fmt.Errorf("topix: embedding field is not []float32")
		}
		doc.Embedding = emb
	}
	return doc, nil
}

package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/joseph-ayodele/rfp-extractor/constants"
)

// StripCodeFences removes a markdown code fence some models wrap JSON in.
func StripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```JSON")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

var (
	topLevelKeys = map[string]struct{}{
		"clientName": {}, "clientNameOriginal": {}, "projectName": {}, "projectNameOriginal": {},
		"projectDescription": {}, "scopeOfWork": {}, "evaluationCriteria": {},
		"requiredDeliverables": {}, "importantDates": {}, "submissionRequirements": {},
		"confidence": {},
	}
	deliverableKeys = map[string]struct{}{"item": {}, "source": {}}
	dateKeys        = map[string]struct{}{"title": {}, "date": {}, "type": {}}
	submissionKeys  = map[string]struct{}{
		"method": {}, "email": {}, "physicalAddress": {}, "format": {}, "copies": {}, "otherRequirements": {},
	}
	synonyms = [][2]string{
		{"client", "clientName"},
		{"client_name", "clientName"},
		{"project", "projectName"},
		{"project_name", "projectName"},
		{"project_description", "projectDescription"},
		{"description", "projectDescription"},
		{"scope_of_work", "scopeOfWork"},
		{"scope", "scopeOfWork"},
		{"evaluation_criteria", "evaluationCriteria"},
		{"deliverables", "requiredDeliverables"},
		{"required_deliverables", "requiredDeliverables"},
		{"dates", "importantDates"},
		{"important_dates", "importantDates"},
		{"submission", "submissionRequirements"},
		{"submission_requirements", "submissionRequirements"},
		{"confidenceScores", "confidence"},
		{"confidence_scores", "confidence"},
	}
)

// ApplyReplyDefaults decodes a model reply and makes it schema-friendly:
//   - renames known synonyms (client_name -> clientName)
//   - drops nulls and fills explicit defaults: missing strings -> "", missing arrays -> []
//   - defaults an unknown deliverable source discriminator to "verbatim"
//   - removes unknown keys at every level
//
// Values of the wrong type are left alone so schema validation rejects them.
func ApplyReplyDefaults(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}
	if m == nil {
		return nil, nil, fmt.Errorf("sanitize: reply is not a JSON object")
	}

	changed := make([]string, 0, 8)
	for _, s := range synonyms {
		from, to := s[0], s[1]
		if v, ok := m[from]; ok {
			// don't overwrite existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			changed = append(changed, from+"->"+to)
		}
	}

	changed = append(changed, dropUnknown(m, topLevelKeys, "")...)

	for _, k := range stringFields {
		switch v := m[k].(type) {
		case nil:
			m[k] = ""
			changed = append(changed, k+"(default)")
		case string:
			m[k] = strings.TrimSpace(v)
		}
	}
	for _, k := range arrayFields {
		if m[k] == nil {
			m[k] = []any{}
			changed = append(changed, k+"(default)")
		}
	}
	if m["confidence"] == nil {
		m["confidence"] = map[string]any{}
		changed = append(changed, "confidence(default)")
	}

	if items, ok := m["requiredDeliverables"].([]any); ok {
		for i, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			prefix := fmt.Sprintf("requiredDeliverables[%d].", i)
			changed = append(changed, dropUnknown(obj, deliverableKeys, prefix)...)
			src, _ := obj["source"].(string)
			norm := strings.ToLower(strings.TrimSpace(src))
			if norm != string(constants.Verbatim) && norm != string(constants.Inferred) {
				if obj["source"] == nil || isString(obj["source"]) {
					obj["source"] = string(constants.Verbatim)
					changed = append(changed, prefix+"source(default)")
				}
			} else {
				obj["source"] = norm
			}
			if s, ok := obj["item"].(string); ok {
				obj["item"] = strings.TrimSpace(s)
			}
		}
	}

	if items, ok := m["importantDates"].([]any); ok {
		for i, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			prefix := fmt.Sprintf("importantDates[%d].", i)
			changed = append(changed, dropUnknown(obj, dateKeys, prefix)...)
			if obj["title"] == nil {
				obj["title"] = ""
			}
			if obj["type"] == nil {
				delete(obj, "type")
			}
		}
	}

	switch sub := m["submissionRequirements"].(type) {
	case nil:
		m["submissionRequirements"] = map[string]any{"method": "", "format": "", "otherRequirements": []any{}}
		changed = append(changed, "submissionRequirements(default)")
	case map[string]any:
		changed = append(changed, dropUnknown(sub, submissionKeys, "submissionRequirements.")...)
		for _, k := range []string{"method", "format"} {
			if sub[k] == nil {
				sub[k] = ""
			}
		}
		for _, k := range []string{"email", "physicalAddress", "copies"} {
			if v, present := sub[k]; present && (v == nil || v == "") {
				delete(sub, k)
			}
		}
		if sub["otherRequirements"] == nil {
			sub["otherRequirements"] = []any{}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changed, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(changed) > 0 {
		logger.Debug("llm.extract.normalize_sanitize", "changed", changed)
	}
	return out, changed, nil
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func dropUnknown(m map[string]any, allowed map[string]struct{}, prefix string) []string {
	var dropped []string
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, prefix+k+"(unknown)")
		}
	}
	return dropped
}

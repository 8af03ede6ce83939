package request

import (
	"encoding/json"
	"fmt"

	"github.com/kouzoh/credential-matcher-core/dcql"
)

type previewField struct {
	Namespace      string `json:"namespace"`
	Name           string `json:"name"`
	IntentToRetain bool   `json:"intentToRetain"`
}

type previewSelector struct {
	DocType string         `json:"doctype"`
	Fields  []previewField `json:"fields"`
}

type previewData struct {
	Selector previewSelector `json:"selector"`
}

// parsePreview handles the "preview" protocol: a flat selector naming a
// doctype and the namespace/name pairs of its requested elements.
func parsePreview(protocol string, payload json.RawMessage) (*MdocRequest, error) {
	var msg previewData
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("request: parse preview data: %w", err)
	}

	elements := make([]dcql.MdocDataElement, 0, len(msg.Selector.Fields))
	for _, f := range msg.Selector.Fields {
		elements = append(elements, dcql.MdocDataElement{
			NamespaceName:   f.Namespace,
			DataElementName: f.Name,
			IntentToRetain:  f.IntentToRetain,
		})
	}

	return &MdocRequest{
		Protocol:     protocol,
		DocType:      msg.Selector.DocType,
		DataElements: elements,
	}, nil
}

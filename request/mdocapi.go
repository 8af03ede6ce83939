package request

import (
	"encoding/json"
	"fmt"

	"github.com/kouzoh/credential-matcher-core/cbor"
	"github.com/kouzoh/credential-matcher-core/dcql"
)

type mdocAPIData struct {
	DeviceRequest string `json:"deviceRequest"`
}

// parseMdocAPI handles the ISO 18013-7 Annex C "mdoc-api" protocol (and its
// austroads-request-forwarding-v2 wrapper, which carries the same
// base64url-encoded CBOR DeviceRequest): a top-level map of docRequests,
// the first of which carries a tag-24-wrapped ItemsRequest naming the
// document type and requested namespaces/elements.
func parseMdocAPI(protocol string, payload json.RawMessage) (*MdocRequest, error) {
	var msg mdocAPIData
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("request: parse mdoc-api data: %w", err)
	}

	raw, err := decodeBase64URL(msg.DeviceRequest)
	if err != nil {
		return nil, fmt.Errorf("request: decode deviceRequest: %w", err)
	}

	deviceRequest, err := cbor.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("request: decode deviceRequest CBOR: %w", err)
	}
	top, err := deviceRequest.AsMap()
	if err != nil {
		return nil, fmt.Errorf("request: deviceRequest is not a map: %w", err)
	}

	docRequestsItem, ok := top.GetText("docRequests")
	if !ok {
		return nil, fmt.Errorf("request: deviceRequest missing docRequests")
	}
	docRequests, err := docRequestsItem.AsArray()
	if err != nil {
		return nil, fmt.Errorf("request: docRequests is not an array: %w", err)
	}
	if len(docRequests) == 0 {
		return nil, fmt.Errorf("request: docRequests is empty")
	}

	docRequestMap, err := docRequests[0].AsMap()
	if err != nil {
		return nil, fmt.Errorf("request: docRequests[0] is not a map: %w", err)
	}
	itemsRequestItem, ok := docRequestMap.GetText("itemsRequest")
	if !ok {
		return nil, fmt.Errorf("request: docRequests[0] missing itemsRequest")
	}
	_, wrapped, ok := itemsRequestItem.Tag()
	if !ok {
		return nil, fmt.Errorf("request: itemsRequest is not tag-wrapped")
	}
	itemsRequestBytes, err := wrapped.AsBstr()
	if err != nil {
		return nil, fmt.Errorf("request: itemsRequest tag content is not a byte string: %w", err)
	}

	itemsRequest, err := cbor.Decode(itemsRequestBytes)
	if err != nil {
		return nil, fmt.Errorf("request: decode itemsRequest CBOR: %w", err)
	}
	itemsMap, err := itemsRequest.AsMap()
	if err != nil {
		return nil, fmt.Errorf("request: itemsRequest is not a map: %w", err)
	}

	docTypeItem, ok := itemsMap.GetText("docType")
	if !ok {
		return nil, fmt.Errorf("request: itemsRequest missing docType")
	}
	docType, err := docTypeItem.AsTstr()
	if err != nil {
		return nil, fmt.Errorf("request: docType is not a text string: %w", err)
	}

	elements, err := mdocAPIElements(itemsMap)
	if err != nil {
		return nil, err
	}

	return &MdocRequest{
		Protocol:     protocol,
		DocType:      docType,
		DataElements: elements,
	}, nil
}

func mdocAPIElements(itemsMap *cbor.Map) ([]dcql.MdocDataElement, error) {
	nsItem, ok := itemsMap.GetText("nameSpaces")
	if !ok {
		return nil, fmt.Errorf("request: itemsRequest missing nameSpaces")
	}
	namespaces, err := nsItem.AsMap()
	if err != nil {
		return nil, fmt.Errorf("request: nameSpaces is not a map: %w", err)
	}

	var elements []dcql.MdocDataElement
	for _, nsEntry := range namespaces.Entries() {
		namespaceName, err := nsEntry.Key.AsTstr()
		if err != nil {
			continue
		}
		elems, err := nsEntry.Value.AsMap()
		if err != nil {
			continue
		}
		for _, elemEntry := range elems.Entries() {
			elementName, err := elemEntry.Key.AsTstr()
			if err != nil {
				continue
			}
			intentToRetain, _ := elemEntry.Value.AsBool()
			elements = append(elements, dcql.MdocDataElement{
				NamespaceName:   namespaceName,
				DataElementName: elementName,
				IntentToRetain:  intentToRetain,
			})
		}
	}
	return elements, nil
}

//go:build wasip1 || wasm

package host

import (
	"bytes"
	"fmt"
	"unsafe"
)

// WasmHost binds Host to the credman WASM host imports. Every exported
// credman function is synchronous and returns a non-zero result code on
// failure; there is no structured error payload, so failures are reported
// as plain errors carrying that code.
type WasmHost struct{}

// NewWasmHost returns the production Host backed by the credman imports.
func NewWasmHost() *WasmHost { return &WasmHost{} }

//go:wasmimport credman get_calling_app_info
func _getCallingAppInfo(packageNamePtr, originPtr unsafe.Pointer) int32

//go:wasmimport credman get_request_size
func _getRequestSize() uint32

//go:wasmimport credman get_request_buffer
func _getRequestBuffer(ptr unsafe.Pointer) int32

//go:wasmimport credman get_credentials_size
func _getCredentialsSize() uint32

//go:wasmimport credman read_credentials_buffer
func _readCredentialsBuffer(ptr unsafe.Pointer, offset, length uint32) int32

//go:wasmimport credman get_wasm_version
func _getWasmVersion() uint32

//go:wasmimport credman add_string_id_entry
func _addStringIdEntry(credIDPtr, iconPtr unsafe.Pointer, iconLen uint32, titlePtr, subtitlePtr, disclaimerPtr, warningPtr unsafe.Pointer) int32

//go:wasmimport credman add_field_for_string_id_entry
func _addFieldForStringIdEntry(credIDPtr, namePtr, valuePtr unsafe.Pointer) int32

//go:wasmimport credman add_entry_set
func _addEntrySet(setIDPtr unsafe.Pointer, setLength uint32) int32

//go:wasmimport credman add_entry_to_set
func _addEntryToSet(entryIDPtr, iconPtr unsafe.Pointer, iconLen uint32, titlePtr, subtitlePtr, disclaimerPtr, warningPtr, metadataPtr, setIDPtr unsafe.Pointer, setIndex uint32) int32

//go:wasmimport credman add_field_to_entry_set
func _addFieldToEntrySet(entryIDPtr, namePtr, valuePtr, setIDPtr unsafe.Pointer, setIndex uint32) int32

// cstr returns a pointer to a NUL-terminated copy of s. The credman ABI
// requires every crossing string to be NUL-terminated UTF-8; the host
// takes ownership of the pointer once the call returns.
func cstr(s string) unsafe.Pointer {
	b := append([]byte(s), 0)
	return unsafe.Pointer(&b[0])
}

func cStringFromBuffer(b []byte) string {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	return string(b)
}

func (h *WasmHost) CallingAppInfo() (CallingAppInfo, error) {
	var packageName [256]byte
	var origin [512]byte
	if rc := _getCallingAppInfo(unsafe.Pointer(&packageName[0]), unsafe.Pointer(&origin[0])); rc != 0 {
		return CallingAppInfo{}, fmt.Errorf("host: get_calling_app_info failed: rc=%d", rc)
	}
	return CallingAppInfo{
		PackageName: cStringFromBuffer(packageName[:]),
		Origin:      cStringFromBuffer(origin[:]),
	}, nil
}

func (h *WasmHost) RequestBuffer() ([]byte, error) {
	size := _getRequestSize()
	buf := make([]byte, size)
	if size == 0 {
		return buf, nil
	}
	if rc := _getRequestBuffer(unsafe.Pointer(&buf[0])); rc != 0 {
		return nil, fmt.Errorf("host: get_request_buffer failed: rc=%d", rc)
	}
	return buf, nil
}

// credentialsChunkSize bounds each read_credentials_buffer call; the ABI
// allows chunked reads so the host never has to stage the whole catalog
// as one contiguous guest-visible buffer.
const credentialsChunkSize = 4096

func (h *WasmHost) CredentialsBuffer() ([]byte, error) {
	size := _getCredentialsSize()
	buf := make([]byte, size)
	for offset := uint32(0); offset < size; offset += credentialsChunkSize {
		length := uint32(credentialsChunkSize)
		if offset+length > size {
			length = size - offset
		}
		if rc := _readCredentialsBuffer(unsafe.Pointer(&buf[offset]), offset, length); rc != 0 {
			return nil, fmt.Errorf("host: read_credentials_buffer failed at offset %d: rc=%d", offset, rc)
		}
	}
	return buf, nil
}

func (h *WasmHost) WasmVersion() (uint32, error) {
	return _getWasmVersion(), nil
}

func (h *WasmHost) AddStringIdEntry(credID string, icon []byte, title, subtitle, disclaimer, warning string) error {
	var iconPtr unsafe.Pointer
	if len(icon) > 0 {
		iconPtr = unsafe.Pointer(&icon[0])
	}
	rc := _addStringIdEntry(cstr(credID), iconPtr, uint32(len(icon)), cstr(title), cstr(subtitle), cstr(disclaimer), cstr(warning))
	if rc != 0 {
		return fmt.Errorf("host: add_string_id_entry failed: rc=%d", rc)
	}
	return nil
}

func (h *WasmHost) AddFieldForStringIdEntry(credID, name, value string) error {
	rc := _addFieldForStringIdEntry(cstr(credID), cstr(name), cstr(value))
	if rc != 0 {
		return fmt.Errorf("host: add_field_for_string_id_entry failed: rc=%d", rc)
	}
	return nil
}

func (h *WasmHost) AddEntrySet(setID string, setLength int) error {
	rc := _addEntrySet(cstr(setID), uint32(setLength))
	if rc != 0 {
		return fmt.Errorf("host: add_entry_set failed: rc=%d", rc)
	}
	return nil
}

func (h *WasmHost) AddEntryToSet(entryID string, icon []byte, title, subtitle, disclaimer, warning, metadata, setID string, setIndex int) error {
	var iconPtr unsafe.Pointer
	if len(icon) > 0 {
		iconPtr = unsafe.Pointer(&icon[0])
	}
	rc := _addEntryToSet(cstr(entryID), iconPtr, uint32(len(icon)), cstr(title), cstr(subtitle), cstr(disclaimer), cstr(warning), cstr(metadata), cstr(setID), uint32(setIndex))
	if rc != 0 {
		return fmt.Errorf("host: add_entry_to_set failed: rc=%d", rc)
	}
	return nil
}

func (h *WasmHost) AddFieldToEntrySet(entryID, name, value, setID string, setIndex int) error {
	rc := _addFieldToEntrySet(cstr(entryID), cstr(name), cstr(value), cstr(setID), uint32(setIndex))
	if rc != 0 {
		return fmt.Errorf("host: add_field_to_entry_set failed: rc=%d", rc)
	}
	return nil
}

package host

// StringIdEntry is one v1 picker emission recorded by Mock.
type StringIdEntry struct {
	CredID                            string
	Icon                              []byte
	Title, Subtitle, Disclaimer, Warn string
	Fields                            []Field
}

// Field is a single AddField{ForStringIdEntry,ToEntrySet} call.
type Field struct {
	Name, Value string
}

// EntrySet is one v2 combination recorded by Mock: a set and its entries.
type EntrySet struct {
	SetID   string
	Length  int
	Entries []EntrySetEntry
}

// EntrySetEntry is one v2 entry within an EntrySet.
type EntrySetEntry struct {
	EntryID                                     string
	Icon                                        []byte
	Title, Subtitle, Disclaimer, Warn, Metadata string
	SetIndex                                    int
	Fields                                      []Field
}

// Mock is an in-process Host used by package tests: it
// serves fixed request/credential buffers and records every picker call
// instead of crossing any process boundary.
type Mock struct {
	Info        CallingAppInfo
	Request     []byte
	Credentials []byte
	Version     uint32

	StringIdEntries []StringIdEntry
	EntrySets       []EntrySet
}

func (m *Mock) CallingAppInfo() (CallingAppInfo, error) { return m.Info, nil }
func (m *Mock) RequestBuffer() ([]byte, error)          { return m.Request, nil }
func (m *Mock) CredentialsBuffer() ([]byte, error)      { return m.Credentials, nil }
func (m *Mock) WasmVersion() (uint32, error)            { return m.Version, nil }

func (m *Mock) AddStringIdEntry(credID string, icon []byte, title, subtitle, disclaimer, warning string) error {
	m.StringIdEntries = append(m.StringIdEntries, StringIdEntry{
		CredID: credID, Icon: icon, Title: title, Subtitle: subtitle, Disclaimer: disclaimer, Warn: warning,
	})
	return nil
}

func (m *Mock) AddFieldForStringIdEntry(credID, name, value string) error {
	for i := range m.StringIdEntries {
		if m.StringIdEntries[i].CredID == credID {
			m.StringIdEntries[i].Fields = append(m.StringIdEntries[i].Fields, Field{Name: name, Value: value})
			return nil
		}
	}
	return nil
}

func (m *Mock) AddEntrySet(setID string, setLength int) error {
	m.EntrySets = append(m.EntrySets, EntrySet{SetID: setID, Length: setLength})
	return nil
}

func (m *Mock) AddEntryToSet(entryID string, icon []byte, title, subtitle, disclaimer, warning, metadata, setID string, setIndex int) error {
	for i := range m.EntrySets {
		if m.EntrySets[i].SetID == setID {
			m.EntrySets[i].Entries = append(m.EntrySets[i].Entries, EntrySetEntry{
				EntryID: entryID, Icon: icon, Title: title, Subtitle: subtitle,
				Disclaimer: disclaimer, Warn: warning, Metadata: metadata, SetIndex: setIndex,
			})
			return nil
		}
	}
	return nil
}

func (m *Mock) AddFieldToEntrySet(entryID, name, value, setID string, setIndex int) error {
	for i := range m.EntrySets {
		if m.EntrySets[i].SetID != setID {
			continue
		}
		for j := range m.EntrySets[i].Entries {
			if m.EntrySets[i].Entries[j].EntryID == entryID {
				m.EntrySets[i].Entries[j].Fields = append(m.EntrySets[i].Entries[j].Fields, Field{Name: name, Value: value})
				return nil
			}
		}
	}
	return nil
}

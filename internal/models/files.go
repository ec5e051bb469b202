package models

// FileSlot represents one of the four fixed input roles of a report run
type FileSlot string

const (
	SlotEnq  FileSlot = "enq"
	SlotCase FileSlot = "case"
	SlotRef  FileSlot = "ref"
	SlotAcct FileSlot = "acct"
)

// Slots lists every required slot in form order
var Slots = []FileSlot{SlotEnq, SlotCase, SlotRef, SlotAcct}

// FieldName returns the multipart form field used for the slot (e.g. "enq_file")
func (s FileSlot) FieldName() string {
	return string(s) + "_file"
}

// ParseSlot accepts either the bare role ("enq") or the form field ("enq_file")
func ParseSlot(name string) (FileSlot, bool) {
	for _, s := range Slots {
		if name == string(s) || name == s.FieldName() {
			return s, true
		}
	}
	return "", false
}

// LocalFile is a file selected on the client side, before upload
type LocalFile struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
}

// UploadedFileSet maps each slot to the opaque reference issued by the server.
// It is either complete (four references) or treated as absent.
type UploadedFileSet map[FileSlot]string

// Complete reports whether all four slots hold a non-empty reference
func (s UploadedFileSet) Complete() bool {
	if len(s) != len(Slots) {
		return false
	}
	for _, slot := range Slots {
		if s[slot] == "" {
			return false
		}
	}
	return true
}

// Empty reports whether the set holds no reference at all
func (s UploadedFileSet) Empty() bool {
	return len(s) == 0
}

// Clone returns an independent copy of the set
func (s UploadedFileSet) Clone() UploadedFileSet {
	if s == nil {
		return nil
	}
	out := make(UploadedFileSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Wire converts the set to the field-keyed map the server expects in JSON bodies
func (s UploadedFileSet) Wire() map[string]string {
	out := make(map[string]string, len(s))
	for slot, ref := range s {
		out[slot.FieldName()] = ref
	}
	return out
}

// FileSetFromWire builds a set from a server "files" map. Unknown keys are ignored.
func FileSetFromWire(files map[string]string) UploadedFileSet {
	out := make(UploadedFileSet, len(files))
	for key, ref := range files {
		if slot, ok := ParseSlot(key); ok {
			out[slot] = ref
		}
	}
	return out
}

// Selection is the set of locally chosen files, one per slot, before upload
type Selection map[FileSlot]LocalFile

// Missing lists the slots without a selected file, in form order
func (s Selection) Missing() []FileSlot {
	var out []FileSlot
	for _, slot := range Slots {
		if _, ok := s[slot]; !ok {
			out = append(out, slot)
		}
	}
	return out
}

// Clear removes the file selected for a slot
func (s Selection) Clear(slot FileSlot) {
	delete(s, slot)
}

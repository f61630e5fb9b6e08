package aggregate

// PatientColumn names the column that identifies a patient. It always comes
// first in a finalized table.
const PatientColumn = "Patient"

// PatientRecord is a column->value map that remembers the order in which
// columns were first written.
type PatientRecord struct {
	keys   []string
	values map[string]interface{}
}

func NewPatientRecord() *PatientRecord {
	return &PatientRecord{values: make(map[string]interface{})}
}

// Set stores value under key. Overwriting keeps the key's original position.
func (p *PatientRecord) Set(key string, value interface{}) {
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

func (p *PatientRecord) Get(key string) (interface{}, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the columns in first-write order.
func (p *PatientRecord) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

func (p *PatientRecord) Len() int {
	return len(p.keys)
}

// Patient returns the patient identifier, or "" if none was set.
func (p *PatientRecord) Patient() string {
	v, ok := p.values[PatientColumn]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// FeatureCount is the number of columns other than Patient.
func (p *PatientRecord) FeatureCount() int {
	if _, ok := p.values[PatientColumn]; ok {
		return len(p.keys) - 1
	}
	return len(p.keys)
}

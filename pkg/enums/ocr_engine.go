package enums

// OCREngine names the extraction engine that produced an invoice's data.
type OCREngine string

const (
	OCREnginePrimary   OCREngine = "primary"
	OCREngineSecondary OCREngine = "secondary"
	OCREngineSimulated OCREngine = "simulated"
)

// IsValid reports whether the engine name is recognized.
func (e OCREngine) IsValid() bool {
	switch e {
	case OCREnginePrimary, OCREngineSecondary, OCREngineSimulated:
		return true
	}
	return false
}

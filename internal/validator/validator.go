package validator

// Validator bundles struct validation and domain business rules. Handlers
// bind JSON into the request DTOs below, services run the business
// validator before touching the store.
type Validator struct {
	business *BusinessValidator
}

// New creates a validator with all domain rules registered
func New() *Validator {
	return &Validator{
		business: NewBusinessValidator(),
	}
}

// GetBusinessValidator returns the business rule validator
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// ValidateStruct validates any tagged struct
func (v *Validator) ValidateStruct(s interface{}) ValidationErrors {
	return v.business.Validate(s)
}

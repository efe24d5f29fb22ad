package schema

import "github.com/mesh-intelligence/chartstore/pkg/types"

// Workflow status enums. Shared with the business rules and the seed
// fixtures.
var (
	AppointmentStatuses = []string{"scheduled", "confirmed", "completed", "cancelled", "no-show"}
	ClaimStatuses       = []string{"draft", "submitted", "approved", "denied", "paid"}
	PolicyStatuses      = []string{"active", "expired", "cancelled"}
)

func bound(v float64) *float64 { return &v }

// DefaultRegistry returns the registry with every standard collection's
// schema registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(&Schema{
		Collection: types.DoctorsCollection,
		Fields: map[string]*Field{
			"licenseNumber":        {Type: TypeString, Required: true},
			"firstName":            {Type: TypeString, Required: true},
			"lastName":             {Type: TypeString, Required: true},
			"specialty":            {Type: TypeString},
			"phone":                {Type: TypeString},
			"email":                {Type: TypeString},
			"acceptingNewPatients": {Type: TypeBool},
		},
	})

	r.Register(&Schema{
		Collection: types.PatientsCollection,
		Fields: map[string]*Field{
			"mrn":         {Type: TypeString, Required: true},
			"firstName":   {Type: TypeString, Required: true},
			"lastName":    {Type: TypeString, Required: true},
			"dateOfBirth": {Type: TypeString},
			"phone":       {Type: TypeString},
			"email":       {Type: TypeString},
			"address": {Type: TypeObject, Fields: map[string]*Field{
				"street": {Type: TypeString},
				"city":   {Type: TypeString},
				"state":  {Type: TypeString},
				"zip":    {Type: TypeString},
			}},
			"allergies": {Type: TypeArray, Elem: &Field{Type: TypeString}},
		},
	})

	r.Register(&Schema{
		Collection: types.PoliciesCollection,
		Fields: map[string]*Field{
			"patientId":    {Type: TypeString, Required: true},
			"policyNumber": {Type: TypeString, Required: true},
			"provider":     {Type: TypeString, Required: true},
			"status":       {Type: TypeString, Required: true, Enum: PolicyStatuses},
			"startDate":    {Type: TypeString, Required: true},
			"endDate":      {Type: TypeString, Required: true},
			"copay":        {Type: TypeNumber, Min: bound(0)},
			"deductible":   {Type: TypeNumber, Min: bound(0)},
		},
	})

	r.Register(&Schema{
		Collection: types.AppointmentsCollection,
		Fields: map[string]*Field{
			"patientId": {Type: TypeString, Required: true},
			"doctorId":  {Type: TypeString, Required: true},
			"date":      {Type: TypeString, Required: true},
			"startTime": {Type: TypeString, Required: true},
			"endTime":   {Type: TypeString, Required: true},
			"status":    {Type: TypeString, Required: true, Enum: AppointmentStatuses},
			"reason":    {Type: TypeString},
			"notes":     {Type: TypeString},
		},
	})

	r.Register(&Schema{
		Collection: types.ClaimsCollection,
		Fields: map[string]*Field{
			"patientId":   {Type: TypeString, Required: true},
			"policyId":    {Type: TypeString},
			"serviceDate": {Type: TypeString, Required: true},
			"status":      {Type: TypeString, Required: true, Enum: ClaimStatuses},
			"amount":      {Type: TypeNumber, Required: true, Min: bound(0)},
			"serviceLines": {Type: TypeArray, Elem: &Field{
				Type: TypeObject,
				Fields: map[string]*Field{
					"code":        {Type: TypeString, Required: true},
					"description": {Type: TypeString},
					"quantity":    {Type: TypeNumber, Min: bound(1)},
					"unitPrice":   {Type: TypeNumber, Min: bound(0)},
					"total":       {Type: TypeNumber, Required: true, Min: bound(0)},
				},
			}},
		},
	})

	return r
}

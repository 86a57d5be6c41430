package schema

// Allowed value sets for the transaction schema. The generator and the
// schema must agree on these; the schema is the authority.
var (
	Currencies     = []string{"USD", "EUR", "HUF"}
	PaymentMethods = []string{"credit_card", "debit_card", "paypal", "bank_transfer"}
	Devices        = []string{"mobile", "desktop", "tablet"}
)

// Transactions returns the schema for the daily transaction dataset.
// Callers must Compile it before use.
func Transactions() *Schema {
	return &Schema{
		Strict: true,
		Coerce: true,
		Fields: []FieldSpec{
			{
				Name:        "transaction_id",
				Type:        TypeString,
				Constraints: []Constraint{Pattern(`^txn_\d{6}$`)},
				Unique:      true,
			},
			{
				Name:        "user_id",
				Type:        TypeString,
				Constraints: []Constraint{Pattern(`^u_\d{4}$`)},
			},
			{
				Name: "timestamp",
				Type: TypeDateTime,
			},
			{
				Name:        "amount",
				Type:        TypeFloat,
				Constraints: []Constraint{GreaterThan(0)},
			},
			{
				Name:        "currency",
				Type:        TypeString,
				Constraints: []Constraint{OneOf(Currencies...)},
			},
			{
				Name:        "payment_method",
				Type:        TypeString,
				Constraints: []Constraint{OneOf(PaymentMethods...)},
			},
			{
				Name:        "country",
				Type:        TypeString,
				Constraints: []Constraint{Length(2, 2), Pattern(`^[A-Z]{2}$`)},
			},
			{
				Name:        "device",
				Type:        TypeString,
				Constraints: []Constraint{OneOf(Devices...)},
			},
			{
				Name:        "is_chargeback",
				Type:        TypeInt,
				Constraints: []Constraint{OneOf("0", "1")},
			},
		},
	}
}

// MustTransactions returns the compiled transaction schema, panicking on a
// compile failure. The schema is a literal, so a failure is a programming
// error, not runtime input.
func MustTransactions() *Schema {
	s := Transactions()
	if err := s.Compile(); err != nil {
		panic(err)
	}
	return s
}

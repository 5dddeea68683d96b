package validate

// Supported message locales.
const (
	LocaleEN = "en"
	LocaleID = "id"
)

var messages = map[string]map[Code]string{
	LocaleEN: {
		CodeEmptyExpression:       "function must not be empty",
		CodeUnparseableExpression: "function could not be parsed",
		CodeNonNumericBounds:      "bounds must be numbers",
		CodeInvertedBounds:        "upper bound must be greater than lower bound",
		CodeNonFiniteBounds:       "bounds must be finite numbers",
	},
	LocaleID: {
		CodeEmptyExpression:       "Fungsi tidak boleh kosong",
		CodeUnparseableExpression: "Fungsi tidak dapat diurai",
		CodeNonNumericBounds:      "Batas harus berupa angka",
		CodeInvertedBounds:        "Batas atas harus lebih besar dari batas bawah",
		CodeNonFiniteBounds:       "Batas harus berupa angka terbatas",
	},
}

// Message returns the user-facing text for locale, falling back to
// English.
func (e *Error) Message(locale string) string {
	table, ok := messages[locale]
	if !ok {
		table = messages[LocaleEN]
	}
	if m, ok := table[e.Code]; ok {
		return m
	}
	return string(e.Code)
}

// SupportedLocale reports whether messages exist for locale.
func SupportedLocale(locale string) bool {
	_, ok := messages[locale]
	return ok
}

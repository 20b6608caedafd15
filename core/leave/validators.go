package leave

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/rhazelina/qr-absence-sub000/core"
)

var (
	sameDayTag  = "sameday"
	sameDayText = "an early dismissal must end on the day it starts"

	effectiveDateTag  = "effective_date"
	effectiveDateText = "effective date must be the day of the dismissal"

	oneOfTag  = "oneof"
	oneOfText = "{0} must be one of: {1}"
)

// InitValidators registers the leave rules on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(earlyDismissalValidation, EarlyDismissal{})
	core.RegisterCustomTranslation(validate, translator, sameDayTag, sameDayText)
	core.RegisterCustomTranslation(validate, translator, effectiveDateTag, effectiveDateText)

	_ = validate.RegisterTranslation(
		oneOfTag, translator,
		func(t ut.Translator) error { return t.Add(oneOfTag, oneOfText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(oneOfTag, fe.Field(), fe.Param())
			return s
		},
	)
}

// earlyDismissalValidation keeps the dismissal range within one day,
// the effective date (when given) being that day.
func earlyDismissalValidation(sl validator.StructLevel) {
	in, ok := sl.Current().Interface().(EarlyDismissal)
	if !ok || in.Start.IsZero() || in.End.IsZero() {
		return
	}
	day := core.DateOf(in.Start)
	if !core.DateOf(in.End).Equal(day) {
		sl.ReportError(in.End, "end", "End", sameDayTag, "")
	}
	if !in.EffectiveDate.IsZero() && !core.DateOf(in.EffectiveDate).Equal(day) {
		sl.ReportError(in.EffectiveDate, "effective_date", "EffectiveDate", effectiveDateTag, "")
	}
}

package payroll

const (
	AdvanceRate = 0.40

	// DaysPerMonth is the divisor used to prorate a salary per absent day.
	DaysPerMonth = 30

	MissingValue      = "N/A"
	UnknownEmployee   = "---"
	csvDelimiter      = ';'
	csvByteOrderMark  = "\uFEFF"
	fileDateSeparator = "-"
)

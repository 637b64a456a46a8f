package quality

// Flag codes shared by the parameter families.
const (
	CodeGood          = "1"
	CodeQuestionable  = "3"
	CodeBad           = "4"
	CodeBelowLimit    = "6"
	CodeBadSymbol     = "B"
	CodeSuspectSymbol = "S"
	CodeSulfideNull   = "Z"
	CodeLessThan      = "<"
	CodeGreaterThan   = ">"
)

func NitrogenFlags() FlagSet {
	return FlagSet{
		Rejected:       []string{CodeQuestionable, CodeBad, CodeBadSymbol, CodeSuspectSymbol},
		BelowDetection: []string{CodeBelowLimit, CodeLessThan},
		Excess:         []string{CodeGreaterThan},
	}
}

func OxygenFlags() FlagSet {
	return FlagSet{
		Rejected:       []string{CodeQuestionable, CodeBad, CodeBadSymbol, CodeSuspectSymbol},
		BelowDetection: []string{CodeBelowLimit, CodeLessThan},
		Excess:         []string{CodeGreaterThan},
	}
}

func SulfideFlags() FlagSet {
	return FlagSet{
		Rejected:       []string{CodeQuestionable, CodeBad, CodeBadSymbol, CodeSuspectSymbol, CodeSulfideNull},
		BelowDetection: []string{CodeBelowLimit, CodeLessThan},
		Excess:         []string{CodeGreaterThan},
	}
}

package quality

type tier struct {
	threshold          Threshold
	action             string
	orchestratorAction string
}

var (
	tierProduction = tier{
		threshold:          ThresholdProduction,
		action:             "Approve for use in templates/documentation.",
		orchestratorAction: "Add to Decision Log, use in Phase 1 template design",
	}
	tierMarginal = tier{
		threshold:          ThresholdMarginal,
		action:             "Flag for human review or run enhancement pass.",
		orchestratorAction: "Sufficient for exploration, not for architectural decisions",
	}
	tierInsufficient = tier{
		threshold:          ThresholdInsufficient,
		action:             "Redesign research approach or provide more context.",
		orchestratorAction: "Do not use - missing critical information for decision-making",
	}
)

// determineThreshold maps the unrounded average onto a tier.
func determineThreshold(average float64) tier {
	switch {
	case average >= 8.0:
		return tierProduction
	case average >= 7.0:
		return tierMarginal
	default:
		return tierInsufficient
	}
}

// internal/pipeline/fallbacks.go
package pipeline

import "pcaf-advisor/internal/models"

// staticGuidance answers in-domain queries that neither tier above could
// resolve.
const staticGuidance = `I can help with the PCAF methodology for motor vehicle loans: calculating attribution factors and financed emissions, assigning and improving data quality scores, and meeting the portfolio compliance threshold. Could you rephrase your question around one of those topics?`

// redirectGuidance answers queries outside the advisor's domain.
const redirectGuidance = `That question falls outside what I cover. I answer questions about the PCAF methodology for motor vehicle loans: financed emissions calculations, attribution factors, data quality scoring, and regulatory disclosure for vehicle loan portfolios.`

// safeFallback replaces a draft that failed fact validation.
const safeFallback = `I could not verify the details of the drafted answer against the PCAF motor vehicle methodology, so here is the reliable core instead: financed emissions are calculated per loan from an attribution factor and the vehicle's annual emissions, and portfolio data quality is tracked on the PCAF score scale with an exposure-weighted average. Please narrow your question and I can give specifics.`

var staticFollowUps = []string{
	"How do I calculate the attribution factor for a vehicle loan?",
	"What are the PCAF data quality options?",
	"How is the portfolio weighted score determined?",
}

// followUpsFor returns intent-specific follow-ups for semantic-tier
// answers, which have no curated entry to draw from.
func followUpsFor(intent models.Intent) []string {
	if qs, ok := intentFollowUps[intent]; ok {
		return qs
	}
	return staticFollowUps
}

var intentFollowUps = map[models.Intent][]string{
	models.IntentCalculate: {
		"Can you walk through a worked calculation example?",
		"Which inputs does this calculation need per loan?",
		"How does the data quality option affect the result?",
	},
	models.IntentExplain: {
		"How is this applied to a motor vehicle loan in practice?",
		"Which data quality option does this correspond to?",
	},
	models.IntentCompare: {
		"Which option fits a portfolio with limited vehicle data?",
		"How does each choice affect the weighted score?",
	},
	models.IntentImplement: {
		"What data should I collect first?",
		"How long does a first reporting cycle usually take?",
		"Which systems typically hold the required vehicle data?",
	},
	models.IntentComply: {
		"What evidence do auditors usually request?",
		"What belongs in a data improvement plan?",
	},
	models.IntentAnalyze: {
		"How do I break this down by vehicle segment?",
		"Which loans pull the weighted score up the most?",
	},
	models.IntentTroubleshoot: {
		"What are the most common data collection gaps?",
		"How are missing vehicle values handled?",
	},
	models.IntentOptimize: {
		"Which loans give the biggest score improvement per effort?",
		"What data upgrade moves a loan up one option?",
	},
}

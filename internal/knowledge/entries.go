// internal/knowledge/entries.go
package knowledge

import "pcaf-advisor/internal/models"

// Source citations shared across entries.
const (
	SourceMotorVehicleMethodology = "PCAF Global Standard - Motor Vehicle Methodology"
	SourceDataQualityScorecard    = "PCAF Data Quality Scorecard for Motor Vehicle Loans"
	SourceReportingGuidance       = "PCAF Reporting and Disclosure Guidance"
)

// DefaultTable returns the curated motor-vehicle knowledge table. Entry
// order is load-bearing: the matcher returns the first containment hit.
func DefaultTable() *Table {
	return MustNewTable(defaultEntries())
}

func defaultEntries() []Entry {
	return []Entry{
		{
			ID: "portfolio-data-quality",
			MatchPatterns: []string{
				"my data quality", "our data quality", "current data quality",
				"my score", "my portfolio score", "our portfolio score",
			},
			Confidence: models.ConfidenceHigh,
			Body: `Your portfolio data quality score is the exposure-weighted average of the per-loan PCAF scores, where each motor vehicle loan is scored from 1 (measured fuel data) to 5 (asset class average).

To improve the score, replace estimated values with vehicle-specific data: collect make and model for unscored loans, then actual mileage where available. Moving a loan from Option 5 to Option 3 typically requires only the vehicle type and an estimated annual distance.`,
			Sources: []string{
				SourceDataQualityScorecard,
				SourceMotorVehicleMethodology,
			},
			FollowUps: []string{
				"How do I improve my portfolio's data quality score?",
				"What is the PCAF compliance threshold?",
				"Which loans should I prioritize for better data collection?",
			},
		},
		{
			ID: "data-quality-options",
			MatchPatterns: []string{
				"data quality option", "quality options", "data quality tiers",
				"scoring options", "five options", "5 options",
			},
			Confidence: models.ConfidenceHigh,
			Body: `PCAF defines five data quality options for motor vehicle loans, ranked from most to least accurate:

Option 1: Real fuel consumption data - measured fuel or charging data for the financed vehicle
Option 2: Actual vehicle specifications - make and model efficiency combined with real mileage
Option 3: Vehicle type efficiency - average efficiency for the vehicle type with estimated distance
Option 4: Vehicle type averages - regional emission averages by vehicle category
Option 5: Asset class average - emissions estimated from the motor vehicle asset class alone

A lower option number means better data quality: a score of 1 is the best achievable, a score of 5 the coarsest estimate.`,
			Sources: []string{
				SourceMotorVehicleMethodology,
				SourceDataQualityScorecard,
			},
			FollowUps: []string{
				"How do I calculate my portfolio's weighted data quality score?",
				"What data do I need for Option 2?",
				"How do the options affect reported emissions accuracy?",
			},
		},
		{
			ID: "attribution-factor",
			MatchPatterns: []string{
				"attribution factor", "calculate attribution", "attribution",
			},
			Confidence: models.ConfidenceHigh,
			Body: `The attribution factor is the share of a vehicle's emissions attributed to your financing exposure.

Attribution Factor = Outstanding Amount ÷ Asset Value

Worked example: a loan with $25,000 outstanding on a vehicle valued at $40,000 gives $25,000 ÷ $40,000 = 0.625, so 62.5% of that vehicle's annual emissions are attributed to the lender.

1. Determine the outstanding amount at the reporting date
2. Determine the vehicle value at loan origination
3. Divide the outstanding amount by the asset value`,
			Sources: []string{
				SourceMotorVehicleMethodology,
			},
			FollowUps: []string{
				"How do I calculate financed emissions from the attribution factor?",
				"Which asset value should I use for used vehicles?",
				"Does the attribution factor change as the loan amortizes?",
			},
		},
		{
			ID: "financed-emissions",
			MatchPatterns: []string{
				"financed emissions", "calculate emissions", "emissions calculation",
				"co2 calculation",
			},
			Confidence: models.ConfidenceHigh,
			Body: `Financed emissions for a motor vehicle loan are the attributed share of the vehicle's annual emissions.

Financed Emissions = Attribution Factor × Vehicle Emissions

Vehicle emissions come from the data quality option in use: measured fuel consumption under Option 1, specification-based estimates under Options 2 and 3, or category averages under Options 4 and 5. Portfolio financed emissions are the sum over all loans, reported in tCO2e.`,
			Sources: []string{
				SourceMotorVehicleMethodology,
			},
			FollowUps: []string{
				"How is the attribution factor calculated?",
				"Which emission factors apply to each vehicle type?",
				"How do I report portfolio-level financed emissions?",
			},
		},
		{
			ID: "weighted-score-compliance",
			MatchPatterns: []string{
				"weighted score", "compliance threshold", "pcaf compliant",
				"portfolio average score", "weighted average score", "compliance requirement",
			},
			Confidence: models.ConfidenceHigh,
			Body: `PCAF compliance for a motor vehicle portfolio is judged on the exposure-weighted data quality score.

Weighted Score = Sum(Score × Outstanding) ÷ Total Outstanding

The portfolio is compliant when the weighted average stays at or below 3.0. Each loan contributes its option score of 1 to 5 weighted by its outstanding amount, so large poorly-scored exposures pull the average up fastest. Institutions above the threshold are expected to show a data improvement plan in their disclosure.`,
			Sources: []string{
				SourceMotorVehicleMethodology,
				SourceReportingGuidance,
			},
			FollowUps: []string{
				"What is my current weighted score?",
				"How quickly can data collection improve the weighted score?",
				"What must the disclosure contain if the portfolio is above 3.0?",
			},
		},
		{
			ID: "data-requirements",
			MatchPatterns: []string{
				"data do i need", "data needed", "required data", "data requirements",
				"what data", "which data",
			},
			Confidence: models.ConfidenceHigh,
			Body: `The data you need depends on the data quality option you target for each motor vehicle loan:

Option 1: vehicle identifier, measured fuel or charging consumption, actual distance travelled
Option 2: make, model, model year, fuel type, actual mileage from service or telematics records
Option 3: vehicle type, fuel type, estimated annual distance for the region
Option 4: vehicle category and region only
Option 5: outstanding amount and asset class, nothing vehicle-specific

For every option you also need the outstanding amount and the vehicle value at origination to compute the attribution factor.`,
			Sources: []string{
				SourceDataQualityScorecard,
				SourceMotorVehicleMethodology,
			},
			FollowUps: []string{
				"Where do banks usually source make and model data?",
				"Which option should I target first?",
				"How is missing mileage estimated under Option 3?",
			},
		},
		{
			ID: "implementation-steps",
			MatchPatterns: []string{
				"how do i implement", "how to implement", "getting started",
				"implementation", "first steps", "begin measuring", "start measuring",
			},
			Confidence: models.ConfidenceHigh,
			Body: `Implementing the PCAF motor vehicle methodology follows a fixed sequence:

1. Inventory the motor vehicle loan book and capture outstanding amounts and vehicle values
2. Assign each loan the best achievable data quality option from the data you hold today
3. Calculate attribution factors per loan
4. Estimate vehicle emissions per loan according to its option
5. Aggregate financed emissions and the weighted data quality score at portfolio level
6. Disclose results and the plan for moving loans to better options

Most institutions start at Options 4 and 5 and improve over successive reporting cycles.`,
			Sources: []string{
				SourceMotorVehicleMethodology,
				SourceReportingGuidance,
			},
			FollowUps: []string{
				"What data do I need for each option?",
				"How long does a first measurement cycle usually take?",
				"Which systems typically hold the vehicle data?",
			},
		},
		{
			ID: "option-comparison",
			MatchPatterns: []string{
				"compare option", "difference between option", "option 1 vs",
				"versus option", "options differ",
			},
			Confidence: models.ConfidenceMedium,
			Body: `The five data quality options trade accuracy against collection effort:

Option 1 uses measured consumption and is the most accurate but needs telematics or fuel card data.
Option 2 uses real vehicle specifications with actual mileage, accurate yet dependent on servicing records.
Option 3 replaces actual mileage with regional distance estimates for the vehicle type.
Option 4 drops vehicle specifics entirely and applies category averages.
Option 5 needs only the asset class and is the coarsest estimate.

Estimation uncertainty roughly doubles with each step from Option 1 to Option 5.`,
			Sources: []string{
				SourceDataQualityScorecard,
			},
			FollowUps: []string{
				"What data would move my loans from Option 5 to Option 3?",
				"How does each option affect the weighted score?",
			},
		},
		{
			ID: "regulatory-reporting",
			MatchPatterns: []string{
				"regulator", "disclosure", "reporting requirement", "audit",
				"csrd", "tcfd", "supervisory",
			},
			Confidence: models.ConfidenceMedium,
			Body:       `PCAF motor vehicle results feed several disclosure regimes. Financed emissions in tCO2e and the weighted data quality score belong in the financed-emissions section of climate reports, alongside the share of the portfolio covered by each data quality option. Auditors typically ask for the loan-level score assignments, the emission factor sources, and evidence that the attribution factors reconcile to the loan book. Institutions above the 3.0 score threshold should disclose a data improvement plan with target options per segment.`,
			Sources: []string{
				SourceReportingGuidance,
				SourceMotorVehicleMethodology,
			},
			FollowUps: []string{
				"What evidence do auditors expect for Option 2 loans?",
				"How is portfolio coverage by option reported?",
				"What belongs in a data improvement plan?",
			},
		},
		{
			ID: "vehicle-scope",
			MatchPatterns: []string{
				"which vehicles", "what vehicles", "vehicle types", "covered vehicles",
				"scope of the methodology", "asset class cover",
			},
			Confidence: models.ConfidenceMedium,
			Body:       `The motor vehicle methodology covers loans secured by on-road vehicles: passenger cars, SUVs, motorcycles, light commercial vans, trucks, and buses. Off-road machinery, rail, shipping, and aviation fall under other PCAF asset classes. Leases are in scope when the institution holds the residual value risk. Each financed vehicle is treated as a single asset with its own attribution factor and data quality score.`,
			Sources: []string{
				SourceMotorVehicleMethodology,
			},
			FollowUps: []string{
				"How are vehicle leases scored?",
				"Do electric vehicles use the same options?",
			},
		},
	}
}

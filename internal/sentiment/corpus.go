package sentiment

import "FinAnalyst/internal/model"

// Example is a labelled training text.
type Example struct {
	Text  string
	Label model.Label
}

// DefaultCorpus is the small hand-labelled headline set the bundled model is trained on.
var DefaultCorpus = []Example{
	{"Company beats earnings estimates and raises full-year guidance", model.Positive},
	{"Shares surge to record high after strong quarterly earnings", model.Positive},
	{"Analysts upgrade the stock citing robust revenue growth", model.Positive},
	{"Firm beats expectations as profit soars on strong demand", model.Positive},
	{"Stock rallies after earnings beat and upbeat outlook", model.Positive},
	{"Record sales lift profit and shares gain", model.Positive},
	{"Strong demand drives revenue growth and margin gains", model.Positive},
	{"Company raises dividend after record earnings", model.Positive},
	{"Investors cheer upgrade as stock climbs higher", model.Positive},
	{"Quarterly results beat forecasts and shares jump", model.Positive},

	{"Company faces lawsuit over alleged fraud", model.Negative},
	{"Shares plunge after earnings miss and weak guidance", model.Negative},
	{"Regulator opens investigation and company faces fines", model.Negative},
	{"Stock falls as analysts downgrade on weak demand", model.Negative},
	{"Firm cuts guidance and announces layoffs amid losses", model.Negative},
	{"Shareholders file lawsuit after stock slump", model.Negative},
	{"Product recall hits sales and shares tumble", model.Negative},
	{"Company reports wider loss as revenue declines", model.Negative},
	{"Lawsuit and investigation weigh on shares which fall sharply", model.Negative},
	{"Investors flee as stock slides on disappointing results", model.Negative},

	{"Company holds annual shareholder meeting", model.Neutral},
	{"Firm schedules quarterly earnings call for next week", model.Neutral},
	{"Shares little changed in steady trading session", model.Neutral},
	{"Company announces date of annual shareholder meeting", model.Neutral},
	{"Analysts expect few surprises next quarter", model.Neutral},
	{"Stock trades flat with mixed sector news", model.Neutral},
	{"Chief executive to speak at industry conference", model.Neutral},
	{"Company holds investor day presentation as scheduled", model.Neutral},
	{"Market steady as shares hold unchanged", model.Neutral},
	{"Board meeting scheduled with no major announcements expected", model.Neutral},
}

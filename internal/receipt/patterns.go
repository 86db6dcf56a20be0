package receipt

import "regexp"

type vendorPattern struct {
	name    string
	pattern *regexp.Regexp
}

func vendorRule(name, pattern string) vendorPattern {
	return vendorPattern{name: name, pattern: regexp.MustCompile(`(?i)` + pattern)}
}

// vendorPatterns is consulted in order; the first match wins. Generic
// entries such as "cafe" and "hotel" sit after the named chains.
var vendorPatterns = []vendorPattern{
	vendorRule("reliance fresh", `reliance\s*fresh`),
	vendorRule("reliance digital", `reliance\s*digital`),
	vendorRule("big bazaar", `big\s*bazaar`),
	vendorRule("dmart", `d[-\s]*mart`),
	vendorRule("spencer's", `spencer'?s`),
	vendorRule("more", `more\s*supermarket`),
	vendorRule("star bazaar", `star\s*bazaar`),
	vendorRule("easyday", `easyday`),
	vendorRule("metro", `metro\s*cash`),
	vendorRule("walmart", `wal[-\s]*mart`),
	vendorRule("amazon", `amazon`),
	vendorRule("flipkart", `flipkart`),
	vendorRule("myntra", `myntra`),
	vendorRule("swiggy", `swiggy`),
	vendorRule("zomato", `zomato`),
	vendorRule("ola", `ola`),
	vendorRule("uber", `uber`),
	vendorRule("cafe coffee day", `cafe\s*coffee\s*day|ccd`),
	vendorRule("starbucks", `starbucks`),
	vendorRule("dominos", `domino'?s`),
	vendorRule("pizza hut", `pizza\s*hut`),
	vendorRule("kfc", `kfc`),
	vendorRule("mcdonald's", `mcdonald'?s`),
	vendorRule("burger king", `burger\s*king`),
	vendorRule("subway", `subway`),
	vendorRule("haldiram's", `haldiram'?s`),
	vendorRule("bikanervala", `bikanervala`),
	vendorRule("saravana bhavan", `saravana\s*bhavan`),
	vendorRule("udupi", `udupi`),
	vendorRule("cafe", `cafe`),
	vendorRule("restaurant", `restaurant`),
	vendorRule("hotel", `hotel`),
	vendorRule("petrol pump", `petrol\s*pump`),
	vendorRule("hp", `\bhp\b`),
	vendorRule("iocl", `iocl`),
	vendorRule("bharat petroleum", `bharat\s*petroleum`),
	vendorRule("essar", `essar`),
}

type categoryKey struct {
	key      string
	category Category
}

// categoryKeys maps lower-case substrings to categories, first match wins
var categoryKeys = []categoryKey{
	{"reliance fresh", Groceries},
	{"reliance digital", Shopping},
	{"big bazaar", Groceries},
	{"dmart", Groceries},
	{"spencer's", Groceries},
	{"more", Groceries},
	{"star bazaar", Groceries},
	{"easyday", Groceries},
	{"metro", Groceries},
	{"walmart", Groceries},
	{"amazon", Shopping},
	{"flipkart", Shopping},
	{"myntra", Shopping},
	{"swiggy", Restaurant},
	{"zomato", Restaurant},
	{"cafe coffee day", Restaurant},
	{"starbucks", Restaurant},
	{"dominos", Restaurant},
	{"pizza hut", Restaurant},
	{"kfc", Restaurant},
	{"mcdonald's", Restaurant},
	{"burger king", Restaurant},
	{"subway", Restaurant},
	{"haldiram's", Restaurant},
	{"bikanervala", Restaurant},
	{"saravana bhavan", Restaurant},
	{"udupi", Restaurant},
	{"cafe", Restaurant},
	{"restaurant", Restaurant},
	{"hotel", Restaurant},
	{"ola", Transportation},
	{"uber", Transportation},
	{"petrol pump", Transportation},
	{"hp", Transportation},
	{"iocl", Transportation},
	{"bharat petroleum", Transportation},
	{"essar", Transportation},
	{"electricity", Electricity},
	{"power", Electricity},
	{"electric", Electricity},
	{"internet", Internet},
	{"telecom", Internet},
	{"mobile", Internet},
	{"airtel", Internet},
	{"jio", Internet},
	{"vodafone", Internet},
	{"vi", Internet},
	{"bsnl", Internet},
}

const amountNumber = `(\d+(?:,\d{3})*(?:\.\d{2})?)`

// amountPatterns capture the number in group 1. All matches of all patterns
// are candidates.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)₹\s*` + amountNumber),
	regexp.MustCompile(`(?i)rs\.?\s*` + amountNumber),
	regexp.MustCompile(`(?i)inr\s*` + amountNumber),
	regexp.MustCompile(`(?i)total\s*:?\s*₹?\s*` + amountNumber),
	regexp.MustCompile(`(?i)amount\s*:?\s*₹?\s*` + amountNumber),
	regexp.MustCompile(`(?i)grand\s*total\s*:?\s*₹?\s*` + amountNumber),
	regexp.MustCompile(`(?i)net\s*amount\s*:?\s*₹?\s*` + amountNumber),
	regexp.MustCompile(`(?i)(\d+(?:,\d{3})*\.\d{2})`),
}

const monthNames = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`

// datePatterns are tried in order; within a pattern, matches are tried in
// text order
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),
	regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`),
	regexp.MustCompile(`(?i)\d{1,2}\s+` + monthNames + `\s+\d{2,4}`),
	regexp.MustCompile(`(?i)` + monthNames + `\s*\d{1,2},?\s*\d{2,4}`),
}

// dateLayouts prefer day-first over month-first, then ISO, then named months
var dateLayouts = []string{
	"2/1/2006", "2-1-2006",
	"1/2/2006", "1-2-2006",
	"2006/1/2", "2006-1-2",
	"2 Jan 2006", "2 January 2006",
	"Jan 2, 2006", "January 2, 2006",
	"Jan 2 2006",
}

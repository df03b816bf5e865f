package apitest

import "github.com/agbru/billcheck/internal/billing"

// Price is a facility's charge for one billing code.
type Price struct {
	GrossCharge    float64
	NegotiatedRate float64
	Description    string
}

// Facilities is the default facility list served by the fake backend.
var Facilities = []billing.Facility{
	{ID: "duke_main", Name: "Duke University Hospital", Address: "2301 Erwin Rd, Durham, NC 27710", City: "Durham", State: "NC", Zip: "27710", Type: "General Acute Care"},
	{ID: "duke_regional", Name: "Duke Regional Hospital", Address: "3643 N Roxboro St, Durham, NC 27704", City: "Durham", State: "NC", Zip: "27704", Type: "General Acute Care"},
	{ID: "duke_raleigh", Name: "Duke Raleigh Hospital", Address: "3400 Wake Forest Rd, Raleigh, NC 27609", City: "Raleigh", State: "NC", Zip: "27609", Type: "General Acute Care"},
	{ID: "unc_main", Name: "UNC Medical Center", Address: "101 Manning Dr, Chapel Hill, NC 27514", City: "Chapel Hill", State: "NC", Zip: "27514", Type: "General Acute Care"},
	{ID: "unc_rex", Name: "UNC Rex Hospital", Address: "4420 Lake Boone Trail, Raleigh, NC 27607", City: "Raleigh", State: "NC", Zip: "27607", Type: "General Acute Care"},
	{ID: "unc_hillsborough", Name: "UNC Hospitals Hillsborough Campus", Address: "429 Waterstone Dr, Hillsborough, NC 27278", City: "Hillsborough", State: "NC", Zip: "27278", Type: "General Acute Care"},
	{ID: "wakemed_raleigh", Name: "WakeMed Raleigh Campus", Address: "3000 New Bern Ave, Raleigh, NC 27610", City: "Raleigh", State: "NC", Zip: "27610", Type: "General Acute Care"},
	{ID: "wakemed_cary", Name: "WakeMed Cary Hospital", Address: "1900 Kildaire Farm Rd, Cary, NC 27518", City: "Cary", State: "NC", Zip: "27518", Type: "General Acute Care"},
	{ID: "wakemed_north", Name: "WakeMed North Hospital", Address: "10000 Falls of Neuse Rd, Raleigh, NC 27614", City: "Raleigh", State: "NC", Zip: "27614", Type: "General Acute Care"},
}

const (
	descOffice   = "Office visit, established patient, low complexity"
	descCBC      = "Complete blood count (CBC)"
	descCMP      = "Comprehensive metabolic panel"
	descXRay     = "Chest X-ray, 2 views"
	descVenipunc = "Venipuncture"
)

func prices(office, officeNeg, cbc, cbcNeg, cmp, cmpNeg, xray, xrayNeg, veni, veniNeg float64) map[string]Price {
	return map[string]Price{
		"99213": {office, officeNeg, descOffice},
		"85025": {cbc, cbcNeg, descCBC},
		"80053": {cmp, cmpNeg, descCMP},
		"71046": {xray, xrayNeg, descXRay},
		"36415": {veni, veniNeg, descVenipunc},
	}
}

// Prices maps facility id to billing code to price.
var Prices = map[string]map[string]Price{
	"duke_main":        prices(385, 192, 105, 52, 205, 102, 725, 362, 52, 26),
	"duke_regional":    prices(325, 162, 88, 44, 172, 86, 612, 306, 44, 22),
	"duke_raleigh":     prices(340, 170, 92, 46, 180, 90, 640, 320, 46, 23),
	"unc_main":         prices(365, 182, 98, 49, 192, 96, 680, 340, 48, 24),
	"unc_rex":          prices(310, 155, 82, 41, 160, 80, 565, 282, 40, 20),
	"unc_hillsborough": prices(285, 142, 75, 37, 148, 74, 520, 260, 36, 18),
	"wakemed_raleigh":  prices(295, 147, 78, 39, 152, 76, 538, 269, 38, 19),
	"wakemed_cary":     prices(305, 152, 80, 40, 158, 79, 558, 279, 39, 19),
	"wakemed_north":    prices(280, 140, 72, 36, 142, 71, 505, 252, 35, 17),
}

// Fixture is the extraction returned for an uploaded file.
type Fixture struct {
	LineItems        []billing.LineItem
	DetectedHospital *billing.DetectionSignal
}

// SampleBill is the default extraction: a Duke University Hospital visit
// detected with high confidence.
func SampleBill() Fixture {
	return Fixture{
		LineItems: []billing.LineItem{
			{Code: billing.Ptr("99213"), Description: descOffice, Quantity: 1, Amount: 450},
			{Code: billing.Ptr("85025"), Description: descCBC, Quantity: 1, Amount: 60},
			{Code: billing.Ptr("80053"), Description: descCMP, Quantity: 1, Amount: 98},
			{Code: billing.Ptr("36415"), Description: descVenipunc, Quantity: 1, Amount: 45},
			{Description: "Pharmacy supplies", Quantity: 2, Amount: 35.5},
		},
		DetectedHospital: &billing.DetectionSignal{
			HospitalID:   billing.Ptr("duke_main"),
			HospitalName: billing.Ptr("Duke University Hospital"),
			DetectedName: billing.Ptr("DUKE UNIVERSITY HEALTH SYSTEM"),
			Confidence:   billing.ConfidenceHigh,
		},
	}
}

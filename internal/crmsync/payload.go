package crmsync

import (
	"net/url"
	"strconv"
	"strings"

	"leadcapture_backend/platform/phone"
)

const (
	defaultStateID = 13 // IL
	countryUS      = "United States"
	countryIDUS    = "1"
)

var stateIDs = map[string]int{
	"AL": 1, "AK": 2, "AZ": 3, "AR": 4, "CA": 5, "CO": 6, "CT": 7, "DE": 8, "FL": 9, "GA": 10,
	"HI": 11, "ID": 12, "IL": 13, "IN": 14, "IA": 15, "KS": 16, "KY": 17, "LA": 18, "ME": 19, "MD": 20,
	"MA": 21, "MI": 22, "MN": 23, "MS": 24, "MO": 25, "MT": 26, "NE": 27, "NV": 28, "NH": 29, "NJ": 30,
	"NM": 31, "NY": 32, "NC": 33, "ND": 34, "OH": 35, "OK": 36, "OR": 37, "PA": 38, "RI": 39, "SC": 40,
	"SD": 41, "TN": 42, "TX": 43, "UT": 44, "VT": 45, "VA": 46, "WA": 47, "WV": 48, "WI": 49, "WY": 50,
}

// StateID maps a two-letter state code to the CRM state id.
func StateID(state string, fallback int) int {
	if id, ok := stateIDs[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return id
	}
	return fallback
}

// SplitName splits a full name on the first space. Missing parts become
// "Unknown" and "Customer" because the CRM requires both.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	first, last = "Unknown", "Customer"
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}
	return first, last
}

// ProspectForm builds the form-encoded prospect creation request.
func ProspectForm(lead Lead, d Defaults) url.Values {
	first, last := SplitName(lead.FullName)
	source := referralSource(lead, d)
	stateID := strconv.Itoa(StateID(lead.Address.State, d.StateID))

	f := url.Values{}
	f.Set("first_name", first)
	f.Set("last_name", last)
	f.Set("email", lead.Email)
	f.Set("phones[0][number]", phone.NationalDigits(lead.Phone))
	f.Set("phones[0][label]", "home")
	f.Set("company_name", source)
	f.Set("rep_id", formatID(repID(lead, d)))
	f.Set("division_id", formatID(firstID(lead.DivisionID, d.DivisionID)))
	f.Set("referred_by_type", firstNonEmpty(lead.ReferralType, "other"))
	if lead.ReferralID != nil {
		f.Set("referred_by_id", formatID(*lead.ReferralID))
	}
	f.Set("referred_by_note", firstNonEmpty(lead.ReferralNote, source))
	f.Set("is_commercial", "0")
	f.Set("call_required", "0")
	f.Set("customer_contacts[0][first_name]", first)
	f.Set("customer_contacts[0][last_name]", last)

	f.Set("job[name]", last+" - "+source)
	f.Set("job[day]", "0")
	f.Set("job[hour]", "0")
	f.Set("job[min]", "0")
	f.Set("job[same_as_customer_address]", "1")
	f.Set("job[same_as_customer_rep]", "0")
	f.Set("job[city]", lead.Address.City)
	f.Set("job[address]", lead.Address.Street)
	f.Set("job[state_id]", stateID)
	f.Set("job[country_id]", countryIDUS)
	f.Set("job[address_line_1]", lead.Address.Street)
	if lead.SalesRepID != nil {
		f.Add("job[estimator_ids][]", formatID(*lead.SalesRepID))
	}
	f.Set("job[description]", JobDescription(lead, d))
	for _, id := range tradeIDs(lead, d) {
		f.Add("job[trades][]", formatID(id))
	}
	for _, id := range workTypeIDs(lead, d) {
		f.Add("job[work_types][]", formatID(id))
	}
	f.Set("job[other_trade_type_description]", strings.Join(lead.ServicesOfInterest, ", "))
	f.Set("job[call_required]", "0")
	f.Set("job[appointment_required]", boolFlag(lead.Appointment != nil))
	f.Set("job[insurance]", "0")
	f.Set("job[duration]", "0:0:0")

	for _, prefix := range []string{"address", "billing"} {
		f.Set(prefix+"[company_name]", source)
		f.Set(prefix+"[address]", lead.Address.Street)
		f.Set(prefix+"[city]", lead.Address.City)
		f.Set(prefix+"[country]", countryUS)
		f.Set(prefix+"[zip]", lead.Address.ZipCode)
		f.Set(prefix+"[country_id]", countryIDUS)
		f.Set(prefix+"[state_id]", stateID)
		f.Set(prefix+"[same_as_customer_address]", "1")
	}

	return f
}

type remotePhone struct {
	Number  string `json:"number"`
	Type    string `json:"type"`
	Label   string `json:"label"`
	Primary bool   `json:"primary"`
}

type remoteAddress struct {
	AddressLine1 string `json:"address_line_1"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
	Country      string `json:"country"`
}

// CustomerUpdate is the JSON body of PUT /customers/:id.
type CustomerUpdate struct {
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	Phones      []remotePhone   `json:"phones"`
	Addresses   []remoteAddress `json:"addresses"`
	Status      string          `json:"status"`
	CompanyName string          `json:"company_name"`
}

// JobUpdate is the JSON body of PUT /jobs/:id for a full sync.
type JobUpdate struct {
	Name                      string        `json:"name,omitempty"`
	Description               string        `json:"description"`
	CustomerID                string        `json:"customer_id"`
	Trades                    []int64       `json:"trades"`
	SameAsCustomerAddress     int           `json:"same_as_customer_address"`
	Address                   remoteAddress `json:"address"`
	ReferralSource            string        `json:"referral_source"`
	WorkTypes                 []int64       `json:"work_types"`
	OtherTradeTypeDescription string        `json:"other_trade_type_description"`
	AppointmentRequired       int           `json:"appointment_required"`
}

// TemperaturePatch is the JSON body of the description-only job update. The
// CRM rejects a job update without customer, trades and address mode.
type TemperaturePatch struct {
	Description           string  `json:"description"`
	CustomerID            string  `json:"customer_id"`
	Trades                []int64 `json:"trades"`
	SameAsCustomerAddress int     `json:"same_as_customer_address"`
}

// JobRename is the JSON body that renames a job after creation.
type JobRename struct {
	Name string `json:"name"`
}

func customerUpdate(lead Lead, d Defaults) CustomerUpdate {
	first, last := SplitName(lead.FullName)
	return CustomerUpdate{
		FirstName: first,
		LastName:  last,
		Email:     lead.Email,
		Phones: []remotePhone{{
			Number:  phone.NationalDigits(lead.Phone),
			Type:    "home",
			Label:   "home",
			Primary: true,
		}},
		Addresses:   []remoteAddress{toRemoteAddress(lead.Address)},
		Status:      "active",
		CompanyName: referralSource(lead, d),
	}
}

func jobUpdate(lead Lead, d Defaults, customerID, jobID string) JobUpdate {
	return JobUpdate{
		Name:                      jobID,
		Description:               JobDescription(lead, d),
		CustomerID:                customerID,
		Trades:                    tradeIDs(lead, d),
		SameAsCustomerAddress:     1,
		Address:                   toRemoteAddress(lead.Address),
		ReferralSource:            referralSource(lead, d),
		WorkTypes:                 workTypeIDs(lead, d),
		OtherTradeTypeDescription: strings.Join(lead.ServicesOfInterest, ", "),
		AppointmentRequired:       flag(lead.Appointment != nil),
	}
}

func temperaturePatch(lead Lead, d Defaults) TemperaturePatch {
	return TemperaturePatch{
		Description:           JobDescription(lead, d),
		CustomerID:            lead.IDs.CustomerID,
		Trades:                tradeIDs(lead, d),
		SameAsCustomerAddress: 1,
	}
}

func toRemoteAddress(a Address) remoteAddress {
	return remoteAddress{
		AddressLine1: a.Street,
		City:         a.City,
		State:        a.State,
		Zip:          a.ZipCode,
		Country:      countryUS,
	}
}

func referralSource(lead Lead, d Defaults) string {
	return firstNonEmpty(lead.ReferredBy, eventName(lead, d))
}

func repID(lead Lead, d Defaults) int64 {
	if lead.SalesRepID != nil && *lead.SalesRepID != 0 {
		return *lead.SalesRepID
	}
	return firstID(lead.CallCenterRepID, d.RepID)
}

func tradeIDs(lead Lead, d Defaults) []int64 {
	if len(lead.TradeIDs) > 0 {
		return lead.TradeIDs
	}
	return []int64{d.TradeID}
}

func workTypeIDs(lead Lead, d Defaults) []int64 {
	if len(lead.WorkTypeIDs) > 0 {
		return lead.WorkTypeIDs
	}
	return []int64{d.WorkTypeID}
}

func firstID(v *int64, fallback int64) int64 {
	if v != nil && *v != 0 {
		return *v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func boolFlag(b bool) string {
	return strconv.Itoa(flag(b))
}

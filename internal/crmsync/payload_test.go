package crmsync

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestProspectFormFields(t *testing.T) {
	lead := sampleLead()
	rep := int64(1234)
	lead.SalesRepID = &rep
	lead.TradeIDs = []int64{105, 106}
	lead.Appointment = &AppointmentDetails{PreferredDate: "2025-08-15", PreferredTime: "10:30 AM"}

	f := ProspectForm(lead, DefaultDefaults())

	checks := map[string]string{
		"first_name":                "Jane",
		"last_name":                 "Q Public",
		"phones[0][number]":         "3125550199",
		"company_name":              "Home Show",
		"rep_id":                    "1234",
		"division_id":               "6496",
		"referred_by_type":          "other",
		"referred_by_note":          "Home Show",
		"job[name]":                 "Q Public - Home Show",
		"job[state_id]":             "13",
		"job[estimator_ids][]":      "1234",
		"job[work_types][]":         "91139",
		"job[appointment_required]": "1",
		"address[zip]":              "60601",
		"billing[country]":          "United States",
	}
	for key, want := range checks {
		if got := f.Get(key); got != want {
			t.Fatalf("%s: expected %q, got %q", key, want, got)
		}
	}
	if got := f.Get("job[other_trade_type_description]"); got != "Kitchen, Bath" {
		t.Fatalf("expected services joined, got %q", got)
	}
	if got := f["job[trades][]"]; len(got) != 2 || got[1] != "106" {
		t.Fatalf("expected both trades, got %v", got)
	}
}

func TestProspectFormRepFallbacks(t *testing.T) {
	lead := sampleLead()
	if got := ProspectForm(lead, DefaultDefaults()).Get("rep_id"); got != "88443" {
		t.Fatalf("expected default rep, got %q", got)
	}

	callCenter := int64(77)
	lead.CallCenterRepID = &callCenter
	if got := ProspectForm(lead, DefaultDefaults()).Get("rep_id"); got != "77" {
		t.Fatalf("expected call center rep, got %q", got)
	}
}

func TestSplitName(t *testing.T) {
	cases := []struct {
		in, first, last string
	}{
		{"Jane Q Public", "Jane", "Q Public"},
		{"Cher", "Cher", "Customer"},
		{"   ", "Unknown", "Customer"},
	}
	for _, tc := range cases {
		first, last := SplitName(tc.in)
		if first != tc.first || last != tc.last {
			t.Fatalf("%q: expected %q/%q, got %q/%q", tc.in, tc.first, tc.last, first, last)
		}
	}
}

func TestStateID(t *testing.T) {
	if StateID("tx", 13) != 43 {
		t.Fatalf("expected TX=43")
	}
	if StateID("Ontario", 13) != 13 {
		t.Fatalf("expected fallback for unknown state")
	}
}

func TestJobDescription(t *testing.T) {
	d := DefaultDefaults()

	lead := Lead{EventName: "Home Show"}
	if got := JobDescription(lead, d); got != "Lead from Home Show" {
		t.Fatalf("unexpected description %q", got)
	}

	lead = Lead{
		Notes:       "Call after 5",
		Appointment: &AppointmentDetails{PreferredDate: "2025-08-15", PreferredTime: "10:30 AM", Notes: " bring samples "},
		TempRating:  intPtr(7),
	}
	want := "Call after 5\n\n--- APPOINTMENT REQUEST ---" +
		"\nPreferred Date: Friday, August 15, 2025" +
		"\nPreferred Time: 10:30 AM" +
		"\nAppointment Notes: bring samples" +
		"\n\nTemp: 7/10"
	if got := JobDescription(lead, d); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	lead = Lead{Notes: "n", Appointment: &AppointmentDetails{Notes: "gate code 12"}, TempRating: intPtr(11)}
	want = "n\n\n--- APPOINTMENT NOTES ---\ngate code 12"
	if got := JobDescription(lead, d); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractIDsPriority(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want RemoteIDs
	}{
		{
			name: "direct fields",
			raw:  `{"id":1,"customer_id":2,"job_id":3}`,
			want: RemoteIDs{ProspectID: "1", CustomerID: "2", JobID: "3"},
		},
		{
			name: "nested objects win over flat fields",
			raw:  `{"prospect":{"id":"p-9"},"customer":{"id":20},"customer_id":2,"job":{"id":30},"job_ids":[31]}`,
			want: RemoteIDs{ProspectID: "p-9", CustomerID: "20", JobID: "30"},
		},
		{
			name: "job ids array and appointment",
			raw:  `{"data":{"id":5,"job_ids":[7,8],"appointment":{"id":12}}}`,
			want: RemoteIDs{ProspectID: "5", JobID: "7", AppointmentID: "12"},
		},
		{
			name: "empty job ids",
			raw:  `{"id":5,"job_ids":[]}`,
			want: RemoteIDs{ProspectID: "5"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractIDs(prospectResponse(t, tc.raw)); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestTemperatureOnlyChange(t *testing.T) {
	prev := sampleLead()
	prev.IDs = RemoteIDs{CustomerID: "77", JobID: "42"}

	next := sampleLead()
	next.TempRating = intPtr(8)
	if !TemperatureOnlyChange(prev, next) {
		t.Fatalf("expected temperature-only change")
	}

	next.Notes = "changed"
	if TemperatureOnlyChange(prev, next) {
		t.Fatalf("expected notes change to require full sync")
	}

	same := sampleLead()
	if TemperatureOnlyChange(prev, same) {
		t.Fatalf("expected no change to not be a temperature change")
	}

	empty := sampleLead()
	empty.ServicesOfInterest = []string{"Kitchen", "Bath"}
	empty.TradeIDs = []int64{}
	empty.TempRating = nil
	if !TemperatureOnlyChange(prev, empty) {
		t.Fatalf("expected empty and nil slices to compare equal")
	}
}

func TestRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	locker := NewRedisLocker(rdb)
	ctx := context.Background()

	unlock, ok, err := locker.TryLock(ctx, "lead-1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first lock to succeed, got ok=%v err=%v", ok, err)
	}
	if _, ok, _ := locker.TryLock(ctx, "lead-1", time.Minute); ok {
		t.Fatalf("expected second lock to be refused")
	}

	unlock()
	if mr.Exists("crmsync:lock:lead-1") {
		t.Fatalf("expected lock released")
	}
	if _, ok, _ := locker.TryLock(ctx, "lead-1", time.Minute); !ok {
		t.Fatalf("expected lock to be free after release")
	}
}

func TestRedisLockerDoesNotReleaseForeignLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	locker := NewRedisLocker(rdb)
	ctx := context.Background()

	unlock, _, _ := locker.TryLock(ctx, "lead-2", time.Second)
	mr.FastForward(2 * time.Second)
	if _, ok, _ := locker.TryLock(ctx, "lead-2", time.Minute); !ok {
		t.Fatalf("expected expired lock to be reacquired")
	}

	unlock()
	if !mr.Exists("crmsync:lock:lead-2") {
		t.Fatalf("expected the new holder's lock to survive a stale unlock")
	}
}

// Package apitest provides an in-process fake of the bill checking backend
// built on gin. It serves the same routes and payload shapes as the real
// service, prices bills against a fixed regional price table, and exposes
// hooks for injecting failures and delays.
package apitest

import (
	"math"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/billing"
)

// Backend is a fake backend. The zero value is not usable; call New.
type Backend struct {
	mu        sync.Mutex
	hospitals []billing.Facility
	prices    map[string]map[string]Price
	fixtures  map[string]Fixture
	fallback  Fixture
	files     map[string]string
	failures  map[string]Failure
	delay     func(op, key string) time.Duration
	calls     map[string]int
	requestID []string
}

// Failure is an injected error response for one operation.
type Failure struct {
	Status int
	Detail string
}

// New returns a backend loaded with the default facilities, prices and
// sample bill.
func New() *Backend {
	return &Backend{
		hospitals: append([]billing.Facility(nil), Facilities...),
		prices:    Prices,
		fixtures:  map[string]Fixture{},
		fallback:  SampleBill(),
		files:     map[string]string{},
		failures:  map[string]Failure{},
		calls:     map[string]int{},
	}
}

// SetFixture registers the extraction returned for uploads named filename.
// Uploads with unregistered names get the sample bill.
func (b *Backend) SetFixture(filename string, f Fixture) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fixtures[filename] = f
}

// Fail makes every call of op respond with the given status and detail until
// cleared with a zero status.
func (b *Backend) Fail(op string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, op)
		return
	}
	b.failures[op] = Failure{Status: status, Detail: detail}
}

// SetDelay installs a per-call latency hook. key is the search query, the
// file id or the hospital id, depending on op.
func (b *Backend) SetDelay(fn func(op, key string) time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delay = fn
}

// Calls returns how many requests op has received.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// RequestIDs returns the X-Request-ID headers seen so far.
func (b *Backend) RequestIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requestID...)
}

// Handler builds the gin engine serving the backend routes.
func (b *Backend) Handler() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "BillCheck API", "version": "0.1.0", "status": "running"})
	})
	r.GET("/health", b.wrap(api.OpHealth, b.health))
	g := r.Group("/api")
	g.POST("/upload", b.wrap(api.OpUpload, b.upload))
	g.POST("/extract", b.wrap(api.OpExtract, b.extract))
	g.GET("/hospitals", b.wrap(api.OpSearch, b.search))
	g.GET("/hospitals/:id", b.wrap(api.OpGetHospital, b.hospital))
	g.POST("/compare", b.wrap(api.OpCompare, b.compare))
	return r
}

// Start serves the backend on a loopback listener. Close the returned server
// when done.
func (b *Backend) Start() *httptest.Server {
	return httptest.NewServer(b.Handler())
}

func (b *Backend) wrap(op string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		b.calls[op]++
		if id := c.GetHeader(api.RequestIDHeader); id != "" {
			b.requestID = append(b.requestID, id)
		}
		failure, failing := b.failures[op]
		b.mu.Unlock()

		if failing {
			c.JSON(failure.Status, gin.H{"detail": failure.Detail})
			return
		}
		h(c)
	}
}

func (b *Backend) sleep(c *gin.Context, op, key string) {
	b.mu.Lock()
	fn := b.delay
	b.mu.Unlock()
	if fn == nil {
		return
	}
	if d := fn(op, key); d > 0 {
		select {
		case <-time.After(d):
		case <-c.Request.Context().Done():
		}
	}
}

func (b *Backend) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (b *Backend) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Field required", "loc": []string{"body", "file"}}}})
		return
	}
	if !strings.EqualFold(path.Ext(fh.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Only PDF files are accepted"})
		return
	}
	id := uuid.NewString()
	b.mu.Lock()
	b.files[id] = fh.Filename
	b.mu.Unlock()
	b.sleep(c, api.OpUpload, fh.Filename)
	c.JSON(http.StatusOK, api.UploadResponse{FileID: id, Filename: fh.Filename})
}

func (b *Backend) extract(c *gin.Context) {
	var req api.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	name, ok := b.files[req.FileID]
	fx, hasFixture := b.fixtures[name]
	if !hasFixture {
		fx = b.fallback
	}
	b.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "File not found"})
		return
	}
	b.sleep(c, api.OpExtract, name)

	items := fx.LineItems
	if items == nil {
		items = []billing.LineItem{}
	}
	c.JSON(http.StatusOK, api.ExtractResponse{LineItems: items, DetectedHospital: fx.DetectedHospital})
}

func (b *Backend) search(c *gin.Context) {
	q := strings.ToLower(strings.TrimSpace(c.Query("search")))
	b.sleep(c, api.OpSearch, q)

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]billing.Facility, 0, len(b.hospitals))
	for _, h := range b.hospitals {
		if q == "" ||
			strings.Contains(strings.ToLower(h.Name), q) ||
			strings.Contains(strings.ToLower(h.City), q) ||
			strings.Contains(strings.ToLower(h.Address), q) {
			out = append(out, h)
		}
	}
	c.JSON(http.StatusOK, api.HospitalListResponse{Hospitals: out})
}

func (b *Backend) hospital(c *gin.Context) {
	h, ok := b.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Hospital not found"})
		return
	}
	c.JSON(http.StatusOK, h)
}

func (b *Backend) lookup(id string) (billing.Facility, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range b.hospitals {
		if h.ID == id {
			return h, true
		}
	}
	return billing.Facility{}, false
}

func (b *Backend) compare(c *gin.Context) {
	var req api.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	h, ok := b.lookup(req.HospitalID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Hospital not found"})
		return
	}
	b.sleep(c, api.OpCompare, req.HospitalID)
	c.JSON(http.StatusOK, b.price(h, req.LineItems))
}

// price assesses each item against the facility's negotiated rate: at or
// below is low, within 20% fair, within 50% high, above that very high.
func (b *Backend) price(h billing.Facility, items []billing.LineItem) billing.ComparisonResult {
	res := billing.ComparisonResult{
		HospitalName: h.Name,
		HospitalID:   h.ID,
		LineItems:    make([]billing.LineItemComparison, 0, len(items)),
	}
	var fair, savings float64
	withData := 0

	for _, it := range items {
		res.TotalBilled += it.Amount * float64(it.Quantity)
		cmp := billing.LineItemComparison{
			Code:           it.Code,
			Description:    it.Description,
			BilledAmount:   it.Amount,
			Quantity:       it.Quantity,
			Status:         billing.StatusUnknown,
			OtherHospitals: []billing.PeerPrice{},
		}
		code := it.CodeOrEmpty()
		if p, ok := b.prices[h.ID][code]; ok {
			cmp.CMSDescription = billing.Ptr(p.Description)
			cmp.HospitalGrossCharge = billing.Ptr(p.GrossCharge)
			cmp.HospitalNegotiatedRate = billing.Ptr(p.NegotiatedRate)
			status, variance, save := assess(it.Amount, p.NegotiatedRate)
			cmp.Status = status
			cmp.VariancePercent = billing.Ptr(variance)
			cmp.PotentialSavings = billing.Ptr(save)
			withData++
			fair += p.NegotiatedRate * float64(it.Quantity)
			savings += save * float64(it.Quantity)
		}
		if code != "" {
			cmp.RegionalStats = b.regional(code)
			cmp.OtherHospitals = b.peers(h.ID, code)
		}
		res.LineItems = append(res.LineItems, cmp)
	}

	res.TotalBilled = round2(res.TotalBilled)
	switch {
	case withData == 0:
		res.OverallAssessment = billing.AssessmentInsufficientData
	case savings > res.TotalBilled*0.3:
		res.OverallAssessment = billing.AssessmentSignificantlyOvercharged
	case savings > res.TotalBilled*0.15:
		res.OverallAssessment = billing.AssessmentModeratelyOvercharged
	case savings > 0:
		res.OverallAssessment = billing.AssessmentSlightlyOvercharged
	default:
		res.OverallAssessment = billing.AssessmentFair
	}
	if withData > 0 {
		res.TotalFairValue = billing.Ptr(round2(fair))
		res.DataSources = []string{"Hospital Mock Data"}
	} else {
		res.DataSources = []string{"No matching data found"}
	}
	if savings > 0 {
		res.TotalPotentialSavings = billing.Ptr(round2(savings))
	}
	return res
}

func assess(billed, rate float64) (billing.Status, float64, float64) {
	variance := math.Round((billed-rate)/rate*1000) / 10
	switch {
	case billed <= rate:
		return billing.StatusLow, variance, 0
	case billed <= rate*1.2:
		return billing.StatusFair, variance, 0
	case billed <= rate*1.5:
		return billing.StatusHigh, variance, round2(billed - rate)
	default:
		return billing.StatusVeryHigh, variance, round2(billed - rate)
	}
}

func (b *Backend) regional(code string) *billing.RegionalStats {
	var charges []float64
	for _, byCode := range b.prices {
		if p, ok := byCode[code]; ok {
			charges = append(charges, p.GrossCharge)
		}
	}
	if len(charges) == 0 {
		return nil
	}
	sort.Float64s(charges)
	var sum float64
	for _, v := range charges {
		sum += v
	}
	return &billing.RegionalStats{
		Min:     charges[0],
		Max:     charges[len(charges)-1],
		Median:  charges[len(charges)/2],
		Average: sum / float64(len(charges)),
		Count:   len(charges),
	}
}

func (b *Backend) peers(selfID, code string) []billing.PeerPrice {
	out := []billing.PeerPrice{}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range b.hospitals {
		if h.ID == selfID {
			continue
		}
		if p, ok := b.prices[h.ID][code]; ok {
			out = append(out, billing.PeerPrice{HospitalName: h.Name, GrossCharge: p.GrossCharge, NegotiatedRate: p.NegotiatedRate})
		}
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

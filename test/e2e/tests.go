package main

import (
	"context"
	"net/http"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/geowfs/wfs-gateway/api/v1"
)

var _ = Describe("Gateway", Ordered, func() {
	var (
		db       *DbReadWriter
		actioner *GatewayActioner
	)

	BeforeAll(func(ctx SpecContext) {
		var err error
		db, err = NewDbReadWriter(ctx, cfg.PostgisDSN, cfg.Schema)
		Expect(err).ToNot(HaveOccurred())

		Expect(db.CreateRoads(ctx)).To(Succeed())
		Expect(db.InsertRoads(ctx,
			Road{ID: 1, Name: "Main Street", Lanes: 2, WKT: "LINESTRING(0 0,1 1)"},
			Road{ID: 2, Name: "Market Street", Lanes: 4, WKT: "LINESTRING(5 5,6 6)"},
			Road{ID: 3, Name: "Ring Road", Lanes: 6, WKT: "LINESTRING(10 0,10 10)"},
		)).To(Succeed())

		actioner = NewGatewayActioner(cfg.GatewayURL, cfg.JWTSecret)

		code, err := actioner.StartSync()
		Expect(err).ToNot(HaveOccurred())
		Expect(code).To(Equal(http.StatusAccepted))

		Eventually(func() v1.SyncStatusState {
			status, err := actioner.SyncStatus()
			if err != nil {
				return ""
			}
			return status.State
		}).WithTimeout(30 * time.Second).WithPolling(500 * time.Millisecond).Should(Equal(v1.SyncStatusStateDone))
	})

	AfterAll(func() {
		if db != nil {
			_ = db.DropSchema(context.Background())
			db.Close()
		}
	})

	It("introspects the roads table", func() {
		layer, err := actioner.Layer("roads")
		Expect(err).ToNot(HaveOccurred())

		Expect(*layer.IdColumn).To(Equal("gid"))
		Expect(layer.GeometryColumns).To(Equal([]string{"geom"}))
		Expect(layer.Srid).To(Equal(4326))
		Expect(layer.DegreeUnits).To(BeTrue())
	})

	It("filters with CQL", func() {
		fc, exc, code, err := actioner.GetFeature(url.Values{
			"TYPENAME":   {"roads"},
			"CQL_FILTER": {"lanes >= 4"},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(exc).To(BeNil())
		Expect(code).To(Equal(http.StatusOK))
		Expect(fc.Features).To(HaveLen(2))
		Expect(fc.NumberReturned).To(Equal(2))
	})

	It("filters with a bounding box", func() {
		fc, _, code, err := actioner.GetFeature(url.Values{
			"TYPENAME": {"roads"},
			"BBOX":     {"4,4,7,7"},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(code).To(Equal(http.StatusOK))
		Expect(fc.Features).To(HaveLen(1))
		Expect(fc.Features[0].Properties["name"]).To(Equal("Market Street"))
		Expect(fc.Features[0].ID).To(Equal("roads.2"))
	})

	It("filters with a Filter document", func() {
		fc, _, code, err := actioner.GetFeature(url.Values{
			"TYPENAME": {"roads"},
			"FILTER":   {`<Filter><PropertyIsLike wildCard="*" singleChar="." escape="!"><PropertyName>name</PropertyName><Literal>M*</Literal></PropertyIsLike></Filter>`},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(code).To(Equal(http.StatusOK))
		Expect(fc.Features).To(HaveLen(2))
	})

	It("selects features by id", func() {
		fc, _, code, err := actioner.GetFeature(url.Values{
			"TYPENAME":  {"roads"},
			"FEATUREID": {"roads.1,roads.3"},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(code).To(Equal(http.StatusOK))
		Expect(fc.Features).To(HaveLen(2))
	})

	It("pages results", func() {
		fc, _, _, err := actioner.GetFeature(url.Values{
			"TYPENAME":    {"roads"},
			"MAXFEATURES": {"1"},
			"STARTINDEX":  {"1"},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(fc.Features).To(HaveLen(1))
		Expect(fc.Features[0].ID).To(Equal("roads.2"))
	})

	It("counts hits", func() {
		fc, _, _, err := actioner.GetFeature(url.Values{
			"TYPENAME":   {"roads"},
			"RESULTTYPE": {"hits"},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(fc.Features).To(BeEmpty())
		Expect(fc.NumberMatched).NotTo(BeNil())
		Expect(*fc.NumberMatched).To(Equal(3))
	})

	It("rejects an unknown property", func() {
		_, exc, code, err := actioner.GetFeature(url.Values{
			"TYPENAME":   {"roads"},
			"CQL_FILTER": {"width > 2"},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(code).To(Equal(http.StatusBadRequest))
		Expect(exc.Code).To(Equal("InvalidParameterValue"))
		Expect(*exc.Locator).To(Equal("CQL_FILTER"))
	})

	It("compiles a Filter document", func() {
		sql, err := actioner.CompileFilter("roads", `<Filter><PropertyIsEqualTo><PropertyName>lanes</PropertyName><Literal>2</Literal></PropertyIsEqualTo></Filter>`)
		Expect(err).ToNot(HaveOccurred())
		Expect(sql).To(Equal(`"lanes" = 2`))
	})
})

package postgis

import (
	"errors"
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/geowfs/wfs-gateway/internal/models"
	srvErrors "github.com/geowfs/wfs-gateway/pkg/errors"
)

var _ = Describe("Feature queries", func() {
	var layer *models.Layer

	BeforeEach(func() {
		layer = &models.Layer{
			Name:         "roads",
			SourceSchema: "public",
			SourceTable:  "roads",
			IDColumn:     "gid",
			SRID:         4326,
			Columns: []models.Column{
				{Name: "gid", Type: "int4"},
				{Name: "name", Type: "varchar"},
				{Name: "geom", Type: "geometry", Geometry: true},
			},
		}
	})

	Context("selectQuery", func() {
		It("should select every column with geometries as WKB", func() {
			query, args, err := selectQuery(models.FeatureQuery{Layer: layer})
			Expect(err).NotTo(HaveOccurred())
			Expect(args).To(BeEmpty())
			Expect(query).To(Equal(`SELECT "gid", "name", ST_AsBinary("geom") AS "geom" FROM "public"."roads" ORDER BY "gid"`))
		})

		It("should wrap the filter and page the result", func() {
			query, _, err := selectQuery(models.FeatureQuery{
				Layer:  layer,
				Where:  `("name" = 'a' OR "gid" = 2)`,
				Limit:  10,
				Offset: 20,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(query).To(Equal(`SELECT "gid", "name", ST_AsBinary("geom") AS "geom" FROM "public"."roads" WHERE (("name" = 'a' OR "gid" = 2)) ORDER BY "gid" LIMIT 10 OFFSET 20`))
		})

		It("should keep question marks inside literals", func() {
			query, _, err := selectQuery(models.FeatureQuery{Layer: layer, Where: `"name" = 'why?'`})
			Expect(err).NotTo(HaveOccurred())
			Expect(query).To(ContainSubstring(`WHERE ("name" = 'why?')`))
		})

		It("should not order layers without an id column", func() {
			layer.IDColumn = ""
			query, _, err := selectQuery(models.FeatureQuery{Layer: layer, Limit: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(query).NotTo(ContainSubstring("ORDER BY"))
			Expect(query).To(HaveSuffix("LIMIT 5"))
		})

		It("should fail on layers without columns", func() {
			layer.Columns = nil
			_, _, err := selectQuery(models.FeatureQuery{Layer: layer})
			Expect(err).To(HaveOccurred())
		})
	})

	Context("countQuery", func() {
		It("should count matching rows", func() {
			query, _, err := countQuery(models.FeatureQuery{Layer: layer, Where: `"gid" = 1`, Limit: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(query).To(Equal(`SELECT COUNT(*) FROM "public"."roads" WHERE ("gid" = 1)`))
		})
	})

	Context("decoding", func() {
		It("should decode WKB geometries", func() {
			data, err := wkb.Marshal(orb.Point{1, 2})
			Expect(err).NotTo(HaveOccurred())

			g, err := decodeGeometry(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(g).To(Equal(orb.Point{1, 2}))

			g, err = decodeGeometry(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(g).To(BeNil())

			_, err = decodeGeometry("POINT(1 2)")
			Expect(err).To(HaveOccurred())
		})

		It("should normalize driver values", func() {
			id := [16]byte{0x6b, 0xa7, 0xb8, 0x10, 0x9d, 0xad, 0x11, 0xd1, 0x80, 0xb4, 0x00, 0xc0, 0x4f, 0xd4, 0x30, 0xc8}
			Expect(normalize(id)).To(Equal("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
			Expect(normalize([]byte{0xde, 0xad})).To(Equal(`\xdead`))
			Expect(normalize(int32(4))).To(Equal(int32(4)))
			Expect(normalize(nil)).To(BeNil())

			n := pgtype.Numeric{Int: big.NewInt(125), Valid: true}
			Expect(normalize(n)).To(Equal("125"))
		})
	})

	Context("classify", func() {
		It("should keep query errors", func() {
			err := classify(errors.New("syntax error"))
			Expect(srvErrors.IsSourceUnavailableError(err)).To(BeFalse())
		})
	})

	Context("isGeographic", func() {
		It("should detect lon/lat systems", func() {
			Expect(isGeographic("+proj=longlat +datum=WGS84 +no_defs")).To(BeTrue())
			Expect(isGeographic("+proj=lcc +lat_1=49 +lat_2=44")).To(BeFalse())
			Expect(isGeographic("")).To(BeFalse())
		})
	})
})

//go:build integration

package postgis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/paulmach/orb"
	testcontainers "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/geowfs/wfs-gateway/internal/models"
	"github.com/geowfs/wfs-gateway/pkg/filter"
)

const fixture = `
CREATE EXTENSION IF NOT EXISTS postgis;
CREATE TABLE roads (
	gid serial PRIMARY KEY,
	name varchar(64),
	lanes int4,
	geom geometry(LineString, 4326)
);
INSERT INTO roads (name, lanes, geom) VALUES
	('Main Street', 2, ST_GeomFromText('LINESTRING(0 0,1 1)', 4326)),
	('Harbour Road', 4, ST_GeomFromText('LINESTRING(10 10,11 11)', 4326)),
	('Why?', 1, ST_GeomFromText('LINESTRING(0.5 0,0.5 1)', 4326));
`

func startPostgis(ctx context.Context) (testcontainers.Container, string, error) {
	request := testcontainers.ContainerRequest{
		Image:        "postgis/postgis:16-3.4",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "wfs",
			"POSTGRES_PASSWORD": "wfs",
			"POSTGRES_DB":       "features",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: request,
		Started:          true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("start postgis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, "", err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(context.Background())
		return nil, "", err
	}

	return container, fmt.Sprintf("postgres://wfs:wfs@%s:%s/features?sslmode=disable", host, port.Port()), nil
}

var _ = Describe("PostGIS integration", Ordered, func() {
	var (
		ctx       context.Context
		container testcontainers.Container
		source    *Source
	)

	BeforeAll(func() {
		ctx = context.Background()

		dsn := strings.TrimSpace(os.Getenv("POSTGIS_TEST_DSN"))
		if dsn == "" {
			var err error
			container, dsn, err = startPostgis(ctx)
			Expect(err).NotTo(HaveOccurred())
		}

		Eventually(func() error {
			var err error
			source, err = Connect(ctx, dsn, 4)
			return err
		}).WithTimeout(90 * time.Second).WithPolling(500 * time.Millisecond).Should(Succeed())

		pool, err := pgxpool.New(ctx, dsn)
		Expect(err).NotTo(HaveOccurred())
		defer pool.Close()
		_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS roads`)
		Expect(err).NotTo(HaveOccurred())
		_, err = pool.Exec(ctx, fixture)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if source != nil {
			source.Close()
		}
		if container != nil {
			Expect(container.Terminate(context.Background())).To(Succeed())
		}
	})

	It("should introspect the roads table", func() {
		layers, err := source.Introspect(ctx, "public", "roads")
		Expect(err).NotTo(HaveOccurred())
		Expect(layers).To(HaveLen(1))

		roads := layers[0]
		Expect(roads.IDColumn).To(Equal("gid"))
		Expect(roads.SRID).To(Equal(4326))
		Expect(roads.DegreeUnits).To(BeTrue())
		Expect(roads.GeometryColumns()).To(Equal([]string{"geom"}))
		Expect(roads.Columns).To(HaveLen(4))
		Expect(roads.Columns[1]).To(Equal(models.Column{Name: "name", Type: "varchar"}))
	})

	It("should fail for tables without geometry", func() {
		_, err := source.Introspect(ctx, "public", "nope")
		Expect(err).To(HaveOccurred())
	})

	It("should run compiled filters", func() {
		layers, err := source.Introspect(ctx, "public", "roads")
		Expect(err).NotTo(HaveOccurred())
		roads := &layers[0]

		t := filter.NewTranslator(filter.NewStaticCatalog(roads.FilterSchema()), filter.WithDialect(filter.DialectPostGIS))
		where, err := t.TranslateXML(ctx, "roads", []byte(`<Filter xmlns:gml="http://www.opengis.net/gml">
			<BBOX><PropertyName>geom</PropertyName>
				<gml:Envelope><gml:lowerCorner>-1 -1</gml:lowerCorner><gml:upperCorner>2 2</gml:upperCorner></gml:Envelope>
			</BBOX></Filter>`))
		Expect(err).NotTo(HaveOccurred())

		q := models.FeatureQuery{Layer: roads, Where: where}
		fc, err := source.Features(ctx, q)
		Expect(err).NotTo(HaveOccurred())
		Expect(fc.Features).To(HaveLen(2))
		Expect(fc.Features[0].ID).To(Equal("roads.1"))
		Expect(fc.Features[0].Geometry).To(Equal(orb.LineString{{0, 0}, {1, 1}}))
		Expect(fc.Features[1].Properties["name"]).To(Equal("Why?"))

		n, err := source.Count(ctx, q)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))

		where, err = t.TranslateXML(ctx, "roads", []byte(`<Filter><PropertyIsEqualTo><PropertyName>name</PropertyName><Literal>Why?</Literal></PropertyIsEqualTo></Filter>`))
		Expect(err).NotTo(HaveOccurred())
		fc, err = source.Features(ctx, models.FeatureQuery{Layer: roads, Where: where})
		Expect(err).NotTo(HaveOccurred())
		Expect(fc.Features).To(HaveLen(1))
		Expect(fc.Features[0].Properties["lanes"]).To(Equal(int32(1)))
	})
})

package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/geowfs/wfs-gateway/internal/catalog"
	"github.com/geowfs/wfs-gateway/internal/models"
)

const roadsYAML = `
layers:
  - name: roads
    title: Roads
    table: roads
    id_column: gid
    columns:
      - {name: gid, type: int4}
      - {name: name, type: varchar}
      - {name: geom, type: geometry, geometry: true}
  - name: parcels
    schema: cadastre
    table: parcel
    srid: 2154
    columns:
      - {name: geom, type: geometry, geometry: true}
`

var _ = Describe("Catalog file", func() {
	Context("Parse", func() {
		It("should decode layers in file order", func() {
			layers, err := catalog.Parse([]byte(roadsYAML))
			Expect(err).NotTo(HaveOccurred())
			Expect(layers).To(HaveLen(2))

			roads := layers[0]
			Expect(roads.Name).To(Equal("roads"))
			Expect(roads.SRID).To(Equal(4326))
			Expect(roads.IDColumn).To(Equal("gid"))
			Expect(roads.GeometryColumns()).To(Equal([]string{"geom"}))

			schema := roads.FilterSchema()
			Expect(schema.Columns).To(HaveLen(3))
			Expect(schema.Columns[1].Name).To(Equal("name"))

			Expect(layers[1].SourceSchema).To(Equal("cadastre"))
			Expect(layers[1].SRID).To(Equal(2154))
			Expect(layers[1].QualifiedTable()).To(Equal(`"cadastre"."parcel"`))
		})

		It("should reject invalid documents", func() {
			inputs := []string{
				"layers: [",
				"layers:\n  - name: roads\n    columns: [{name: a, type: int4}]\n",
				"layers:\n  - name: roads\n    table: roads\n",
				"layers:\n  - name: roads\n    table: roads\n    id_column: fid\n    columns: [{name: a, type: int4}]\n",
				"layers:\n  - name: roads\n    table: roads\n    colour: red\n    columns: [{name: a, type: int4}]\n",
				"layers:\n  - {name: a, table: a, columns: [{name: g, type: int4}]}\n  - {name: a, table: b, columns: [{name: g, type: int4}]}\n",
			}
			for _, input := range inputs {
				_, err := catalog.Parse([]byte(input))
				Expect(err).To(HaveOccurred(), input)
			}
		})

		It("should round trip through Marshal", func() {
			layers, err := catalog.Parse([]byte(roadsYAML))
			Expect(err).NotTo(HaveOccurred())

			data, err := catalog.Marshal(layers)
			Expect(err).NotTo(HaveOccurred())

			again, err := catalog.Parse(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(layers))
		})
	})

	Context("Watcher", func() {
		It("should reload the file after a write and skip invalid content", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "layers.yaml")
			Expect(os.WriteFile(path, []byte(roadsYAML), 0o600)).To(Succeed())

			var mu sync.Mutex
			var loads [][]models.Layer
			w := catalog.NewWatcher(path, func(_ context.Context, layers []models.Layer) error {
				mu.Lock()
				defer mu.Unlock()
				loads = append(loads, layers)
				return nil
			}).WithDebounce(20 * time.Millisecond)

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- w.Run(ctx) }()

			count := func() int {
				mu.Lock()
				defer mu.Unlock()
				return len(loads)
			}

			// the watch is registered asynchronously
			Eventually(func() int {
				_ = os.WriteFile(path, []byte("layers:\n  - {name: only, table: t, columns: [{name: g, type: int4}]}\n"), 0o600)
				return count()
			}).WithTimeout(5 * time.Second).WithPolling(100 * time.Millisecond).Should(BeNumerically(">=", 1))

			mu.Lock()
			last := loads[len(loads)-1]
			mu.Unlock()
			Expect(last).To(HaveLen(1))
			Expect(last[0].Name).To(Equal("only"))

			before := count()
			Expect(os.WriteFile(path, []byte("layers: ["), 0o600)).To(Succeed())
			Consistently(count).WithTimeout(300 * time.Millisecond).Should(Equal(before))

			cancel()
			Eventually(done).Should(Receive(BeNil()))
		})
	})
})

package filter

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Node", func() {
	Context("Decode", func() {
		It("should keep local names, namespaces and attributes", func() {
			root, err := Decode(strings.NewReader(`<?xml version="1.0"?>
<ogc:Filter xmlns:ogc="http://www.opengis.net/ogc" xmlns:gml="http://www.opengis.net/gml">
  <!-- comment -->
  <ogc:GmlObjectId gml:id="roads.1"/>
</ogc:Filter>`))
			Expect(err).ToNot(HaveOccurred())
			Expect(root.Name).To(Equal("Filter"))
			Expect(root.Space).To(Equal("http://www.opengis.net/ogc"))
			Expect(root.Attr).To(BeEmpty())

			elements := root.Elements()
			Expect(elements).To(HaveLen(1))
			Expect(elements[0].Name).To(Equal("GmlObjectId"))

			id, ok := elements[0].Attribute("id")
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal("roads.1"))
		})

		It("should keep whitespace text between elements", func() {
			root, err := DecodeBytes([]byte("<a>\n  <b>x</b>\n  <c><d>y</d>z</c>\n</a>"))
			Expect(err).ToNot(HaveOccurred())
			Expect(len(root.Children)).To(BeNumerically(">", 2))
			Expect(root.Elements()).To(HaveLen(2))
			Expect(root.Child("c").Content()).To(Equal("yz"))
			Expect(root.Child("missing")).To(BeNil())
		})

		It("should reject documents without a root", func() {
			_, err := DecodeBytes([]byte("  "))
			Expect(IsKind(err, InvalidFilter)).To(BeTrue())
		})

		It("should reject documents with two roots", func() {
			_, err := DecodeBytes([]byte("<a/><b/>"))
			Expect(IsKind(err, InvalidFilter)).To(BeTrue())
		})

		It("should reject unclosed elements", func() {
			_, err := DecodeBytes([]byte("<a><b></a>"))
			Expect(IsKind(err, InvalidFilter)).To(BeTrue())
		})
	})

	Context("OperatorOf", func() {
		It("should decode the operator class", func() {
			Expect(OperatorOf(NewElement("PropertyIsLike", nil)).Class()).To(Equal(ClassComparison))
			Expect(OperatorOf(NewElement("Or", nil)).Class()).To(Equal(ClassLogical))
			Expect(OperatorOf(NewElement("BBOX", nil)).Class()).To(Equal(ClassSpatial))
			Expect(OperatorOf(NewElement("GmlObjectId", nil)).Class()).To(Equal(ClassIdentifier))
			Expect(OperatorOf(NewElement("Function", nil)).Class()).To(Equal(ClassExpression))
			Expect(OperatorOf(NewElement("bbox", nil))).To(Equal(OpUnknown))
			Expect(OperatorOf(NewText("And"))).To(Equal(OpUnknown))
			Expect(OperatorOf(nil)).To(Equal(OpUnknown))
		})

		It("should print the element name", func() {
			Expect(OpDWithin.String()).To(Equal("DWithin"))
			Expect(OpUnknown.String()).To(Equal("unknown"))
		})
	})

	Context("Errors", func() {
		It("should expose the kind", func() {
			err := newError(InvalidBbox, "bad %s", "bbox")
			Expect(err.Error()).To(Equal("InvalidBbox: bad bbox"))

			kind, ok := KindOf(err)
			Expect(ok).To(BeTrue())
			Expect(kind).To(Equal(InvalidBbox))
			Expect(IsFilterError(err)).To(BeTrue())
			Expect(IsFilterError(ErrLayerNotFound)).To(BeFalse())
		})
	})

	Context("String literals", func() {
		It("should quote numeric text", func() {
			root := NewElement("Filter", nil,
				NewElement("PropertyIsEqualTo", nil,
					NewElement("PropertyName", nil, NewText("name")),
					NewStringLiteral("123"),
				),
			)
			sql, err := NewTranslator(testCatalog()).Translate(context.Background(), "roads", root)
			Expect(err).ToNot(HaveOccurred())
			Expect(sql).To(Equal(`"name" = '123'`))
		})

		It("should not be set by decoding", func() {
			root, err := DecodeBytes([]byte(`<Filter><PropertyIsEqualTo><PropertyName>name</PropertyName><Literal>123</Literal></PropertyIsEqualTo></Filter>`))
			Expect(err).ToNot(HaveOccurred())
			Expect(root.Elements()[0].Elements()[1].Quoted).To(BeFalse())
		})
	})
})

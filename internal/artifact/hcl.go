package artifact

import (
	"io"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/interop-labs/modreg/internal/registry"
)

const hclHeader = "# Code generated by modreg. DO NOT EDIT.\n"

// HCLEncoder renders one factory block per record:
//
//	factory {
//	  name        = "acme/foo_0"
//	  description = "Module for package acme/foo"
//	  module      = acme.foo.module()
//	  priority    = 0
//	}
//
// The module expression is inserted as raw tokens, not as a string literal.
type HCLEncoder struct{}

// Encode implements Encoder.
func (HCLEncoder) Encode(w io.Writer, records []registry.Record) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.AppendUnstructuredTokens(hclwrite.Tokens{
		{Type: hclsyntax.TokenComment, Bytes: []byte(hclHeader)},
	})

	for _, r := range records {
		body.AppendNewline()
		block := body.AppendNewBlock("factory", nil).Body()
		block.SetAttributeValue("name", cty.StringVal(r.Name))
		block.SetAttributeValue("description", cty.StringVal(r.Description))
		block.SetAttributeRaw("module", rawExpression(r.Module))
		block.SetAttributeValue("priority", cty.NumberIntVal(int64(r.Priority)))
	}

	_, err := f.WriteTo(w)
	return err
}

// rawExpression wraps expr in a single token so hclwrite emits it untouched.
func rawExpression(expr string) hclwrite.Tokens {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = "null"
	}
	return hclwrite.Tokens{{Type: hclsyntax.TokenIdent, Bytes: []byte(expr)}}
}

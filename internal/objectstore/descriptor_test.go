package objectstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorDurable(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
		want bool
	}{
		{"small record", Descriptor{Kind: KindRecord, Size: 128}, false},
		{"record at threshold", Descriptor{Kind: KindRecord, Size: DefaultBlobThreshold}, false},
		{"record over threshold", Descriptor{Kind: KindRecord, Size: DefaultBlobThreshold + 1}, true},
		{"small document", Descriptor{Kind: KindDocument, Size: 10}, true},
		{"blob", Descriptor{Kind: KindBlob, Size: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.desc.Durable(0))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "record", KindRecord.String())
	assert.Equal(t, "document", KindDocument.String())
	assert.Equal(t, "blob", KindBlob.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

package message_test

import (
	"testing"

	"github.com/mickamy/go-bolt/bolt"
	"github.com/mickamy/go-bolt/bolt/message"
	"github.com/mickamy/go-bolt/packstream"
)

func TestValidateParamsRejectsBytesBelowV2(t *testing.T) {
	v1 := bolt.Version{Major: 1, Minor: 0}
	params := packstream.Map{"data": packstream.Bytes{0x01}}
	if err := message.ValidateParams(v1, params); err == nil {
		t.Fatal("expected error for Bytes param on v1.0")
	}
}

func TestValidateParamsRejectsNestedBytesBelowV2(t *testing.T) {
	v1 := bolt.Version{Major: 1, Minor: 0}
	params := packstream.Map{"nested": packstream.List{packstream.Map{"inner": packstream.Bytes{0x01}}}}
	if err := message.ValidateParams(v1, params); err == nil {
		t.Fatal("expected error for Bytes nested inside list/map on v1.0")
	}
}

func TestValidateParamsAllowsBytesFromV2(t *testing.T) {
	v2 := bolt.Version{Major: 2, Minor: 0}
	params := packstream.Map{"data": packstream.Bytes{0x01}}
	if err := message.ValidateParams(v2, params); err != nil {
		t.Fatalf("ValidateParams: %v", err)
	}
}

func TestHelloOmitsPatchBoltOutsideV43Window(t *testing.T) {
	v42 := bolt.Version{Major: 4, Minor: 2}
	s := message.Hello(v42, message.HelloOptions{UserAgent: "go-bolt-test/0"}, bolt.Auth{Scheme: "none"})
	extra := s.Fields[0].(packstream.Map)
	if _, ok := extra["patch_bolt"]; ok {
		t.Fatal("patch_bolt should not be offered pre-4.3")
	}

	v50 := bolt.Version{Major: 5, Minor: 0}
	s = message.Hello(v50, message.HelloOptions{UserAgent: "go-bolt-test/0"}, bolt.Auth{Scheme: "none"})
	extra = s.Fields[0].(packstream.Map)
	if _, ok := extra["patch_bolt"]; ok {
		t.Fatal("patch_bolt should not be offered on v5+, which already defaults to UTC")
	}
}

func TestHelloOffersPatchBoltOn43And44(t *testing.T) {
	for _, v := range []bolt.Version{{Major: 4, Minor: 3}, {Major: 4, Minor: 4}} {
		s := message.Hello(v, message.HelloOptions{UserAgent: "go-bolt-test/0"}, bolt.Auth{Scheme: "none"})
		extra := s.Fields[0].(packstream.Map)
		list, ok := extra["patch_bolt"].(packstream.List)
		if !ok || len(list) != 1 || list[0] != packstream.String("utc") {
			t.Fatalf("version %s: patch_bolt = %v, want [\"utc\"]", v, extra["patch_bolt"])
		}
	}
}

package idgen

import "testing"

func TestEncoder_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		seed string
	}{
		{name: "默认字母表", seed: ""},
		{name: "带种子", seed: "photography"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncoder(tt.seed)
			if err != nil {
				t.Fatalf("NewEncoder() err = %v", err)
			}
			for _, id := range []uint{1, 2, 42, 1000} {
				publicID, err := enc.Encode(id, EntityTypePhoto)
				if err != nil {
					t.Fatalf("Encode(%d) err = %v", id, err)
				}
				if len(publicID) < 4 {
					t.Errorf("公共ID %q 短于最小长度", publicID)
				}
				got, err := enc.Decode(publicID, EntityTypePhoto)
				if err != nil || got != id {
					t.Errorf("Decode(%q) = %d, %v, 期望 %d", publicID, got, err, id)
				}
			}
		})
	}
}

func TestEncoder_DecodeInvalid(t *testing.T) {
	enc, _ := NewEncoder("photography")
	publicID, _ := enc.Encode(7, 99)
	if _, err := enc.Decode(publicID, EntityTypePhoto); err == nil {
		t.Error("实体类型不匹配时应返回错误")
	}
	if _, err := enc.Decode("", EntityTypePhoto); err == nil {
		t.Error("空字符串应返回错误")
	}
}

func TestShuffleAlphabetDeterministic(t *testing.T) {
	if shuffleAlphabet("abc") != shuffleAlphabet("abc") {
		t.Error("相同种子应得到相同字母表")
	}
	if shuffleAlphabet("abc") == DefaultAlphabet {
		t.Error("打乱后的字母表不应与默认字母表相同")
	}
}

package pronounce

import (
	"regexp"
	"testing"
)

func TestClipName_Stable(t *testing.T) {
	a := ClipName("oxford", "hello", map[string]string{"voice": "en-GB"}, "mp3")
	b := ClipName("oxford", "hello", map[string]string{"voice": "en-GB"}, "mp3")
	if a != b {
		t.Errorf("same request produced %q and %q", a, b)
	}
	if ok, _ := regexp.MatchString(`^[0-9a-f]{32}\.mp3$`, a); !ok {
		t.Errorf("name %q is not a hex digest with format suffix", a)
	}
}

func TestClipName_OptionOrderIrrelevant(t *testing.T) {
	a := ClipName("yandex", "привет", map[string]string{"voice": "marina", "speed": "1.0"}, "wav")
	b := ClipName("yandex", "привет", map[string]string{"speed": "1.0", "voice": "marina"}, "wav")
	if a != b {
		t.Errorf("option order changed the name: %q vs %q", a, b)
	}
}

func TestClipName_DistinguishesInputs(t *testing.T) {
	base := ClipName("oxford", "hello", map[string]string{"voice": "en-GB"}, "mp3")
	variants := map[string]string{
		"provider": ClipName("wikicommons", "hello", map[string]string{"voice": "en-GB"}, "mp3"),
		"text":     ClipName("oxford", "Hello", map[string]string{"voice": "en-GB"}, "mp3"),
		"option":   ClipName("oxford", "hello", map[string]string{"voice": "en-US"}, "mp3"),
		"format":   ClipName("oxford", "hello", map[string]string{"voice": "en-GB"}, "ogg"),
	}
	for field, name := range variants {
		if name == base {
			t.Errorf("changing the %s did not change the name", field)
		}
	}
}

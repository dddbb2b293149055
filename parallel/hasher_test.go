package parallel

import "bytes"
import "crypto/sha256"
import "encoding/hex"
import "testing"

func TestHasherOrder(t *testing.T) {
	var digests [][32]byte
	var want = sha256.New()
	for n := 0; n < 100; n++ {
		d := sha256.Sum256([]byte{byte(n)})
		digests = append(digests, d)
		want.Write(d[:])
	}

	h := NewHasher(100)
	for n := 99; n >= 0; n-- {
		if err := h.Put(n, digests[n]); err != nil {
			t.Fatal(err)
		}
	}
	sum, err := h.Sum()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sum[:], want.Sum(nil)) {
		t.Errorf("reverse order hash %x", sum)
	}
}

func TestHasherMisuse(t *testing.T) {
	h := NewHasher(2)
	if err := h.Put(0, [32]byte{}); err != nil {
		t.Fatal(err)
	}
	if err := h.Put(0, [32]byte{}); err == nil {
		t.Errorf("duplicate block accepted")
	}
	if err := h.Put(2, [32]byte{}); err == nil {
		t.Errorf("block out of range accepted")
	}
	if _, err := h.Sum(); err == nil {
		t.Errorf("sum of an incomplete set")
	}
}

func TestHashReaderAt(t *testing.T) {
	data := bytes.Repeat([]byte("crystal"), 1000)

	var want = sha256.New()
	for off := 0; off < len(data); off += 512 {
		d := sha256.Sum256(data[off:min(off+512, len(data))])
		want.Write(d[:])
	}

	got, err := HashReaderAt(bytes.NewReader(data), int64(len(data)), 512, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got != hex.EncodeToString(want.Sum(nil)) {
		t.Errorf("digest %s", got)
	}

	data[4000] ^= 1
	changed, err := HashReaderAt(bytes.NewReader(data), int64(len(data)), 512, 4)
	if err != nil {
		t.Fatal(err)
	}
	if changed == got {
		t.Errorf("a flipped bit kept the digest")
	}
	if _, err := HashReaderAt(bytes.NewReader(data), int64(len(data))+10, 512, 4); err == nil {
		t.Errorf("short read accepted")
	}
}

package ota

import "testing"

func buildTestImage(manufacturerCode, imageType uint16, fileVersion uint32, upgradeData []byte) *Image {
	return &Image{
		Header: Header{
			ManufacturerCode: manufacturerCode,
			ImageType:        imageType,
			FileVersion:      fileVersion,
			TotalImageSize:   uint32(len(upgradeData)),
		},
		SubElements: []SubElement{{Tag: TagUpgradeImage, Data: upgradeData}},
	}
}

func TestImageRoundTrip(t *testing.T) {
	img := buildTestImage(0x117c, 0x0042, 0x01000020, []byte("firmware-bytes"))
	raw := EncodeImage(img)

	got, err := ParseImage(raw)
	if err != nil {
		t.Fatalf("ParseImage: %v", err)
	}
	if got.Header.ManufacturerCode != 0x117c || got.Header.ImageType != 0x0042 || got.Header.FileVersion != 0x01000020 {
		t.Fatalf("header mismatch: %+v", got.Header)
	}
	data, ok := got.UpgradeData()
	if !ok || string(data) != "firmware-bytes" {
		t.Fatalf("upgrade data = %q, ok=%v", data, ok)
	}
}

func TestParseImageRejectsBadIdentifier(t *testing.T) {
	raw := EncodeImage(buildTestImage(1, 2, 3, []byte("x")))
	raw[0] ^= 0xFF
	if _, err := ParseImage(raw); err == nil {
		t.Fatalf("expected error for corrupted file identifier")
	}
}

func TestParseImageHardwareVersionRange(t *testing.T) {
	img := buildTestImage(1, 2, 3, []byte("x"))
	img.Header.HasHardwareVersions = true
	img.Header.FieldControl |= fieldHardwareVersions
	img.Header.MinHardwareVersion = 1
	img.Header.MaxHardwareVersion = 5

	raw := EncodeImage(img)
	got, err := ParseImage(raw)
	if err != nil {
		t.Fatalf("ParseImage: %v", err)
	}
	if !got.Header.HasHardwareVersions || got.Header.MinHardwareVersion != 1 || got.Header.MaxHardwareVersion != 5 {
		t.Fatalf("hardware version range not preserved: %+v", got.Header)
	}
}

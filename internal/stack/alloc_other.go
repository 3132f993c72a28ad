//go:build !linux && !darwin

package stack

func allocRegion(class SizeClass) ([]byte, bool, error) {
	return make([]byte, guardRegionSize+class.Bytes()), false, nil
}

func freeRegion(region []byte, mmaped bool) {}

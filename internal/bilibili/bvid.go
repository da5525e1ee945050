package bilibili

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	bvidAlphabet = "FcwAPNKTMug3GV5Lj7EJnHpWsx4tb8haYeviqBz6rkCy12mUSDQX9RdoZf"
	bvidBase     = 58
	bvidLen      = 12
	bvidPrefix   = "BV1"

	xorCode  uint64 = 23442827791579
	maskCode uint64 = 1<<51 - 1
	maxAID   uint64 = 1 << 51
)

// VideoID identifies a video by both of its public ids.
type VideoID struct {
	BVID string
	AID  int64
}

func (id VideoID) String() string {
	if id.BVID != "" {
		return id.BVID
	}
	return "av" + strconv.FormatInt(id.AID, 10)
}

// ParseVideoID accepts BV ids, av ids ("av170001") and bare numeric aids.
func ParseVideoID(s string) (VideoID, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return VideoID{}, fmt.Errorf("empty video id")
	case len(s) > 2 && strings.EqualFold(s[:2], "bv"):
		bvid := "BV" + s[2:]
		aid, err := BVIDToAID(bvid)
		if err != nil {
			return VideoID{}, err
		}
		return VideoID{BVID: bvid, AID: aid}, nil
	default:
		num := s
		if len(s) > 2 && strings.EqualFold(s[:2], "av") {
			num = s[2:]
		}
		aid, err := strconv.ParseInt(num, 10, 64)
		if err != nil || aid <= 0 {
			return VideoID{}, fmt.Errorf("invalid video id %q", s)
		}
		bvid, err := AIDToBVID(aid)
		if err != nil {
			return VideoID{}, err
		}
		return VideoID{BVID: bvid, AID: aid}, nil
	}
}

// BVIDToAID decodes a BV id into its numeric av id.
func BVIDToAID(bvid string) (int64, error) {
	if len(bvid) != bvidLen || !strings.HasPrefix(bvid, bvidPrefix) {
		return 0, fmt.Errorf("invalid bvid %q", bvid)
	}

	chars := []byte(bvid)
	chars[3], chars[9] = chars[9], chars[3]
	chars[4], chars[7] = chars[7], chars[4]

	var tmp uint64
	for _, c := range chars[3:] {
		idx := strings.IndexByte(bvidAlphabet, c)
		if idx < 0 {
			return 0, fmt.Errorf("invalid bvid %q: unexpected character %q", bvid, c)
		}
		tmp = tmp*bvidBase + uint64(idx)
	}

	return int64((tmp & maskCode) ^ xorCode), nil
}

// AIDToBVID encodes a numeric av id as a BV id.
func AIDToBVID(aid int64) (string, error) {
	if aid <= 0 || uint64(aid) >= maxAID {
		return "", fmt.Errorf("aid %d out of range", aid)
	}

	out := []byte("BV1000000000")
	tmp := (maxAID | uint64(aid)) ^ xorCode
	for i := bvidLen - 1; tmp != 0 && i >= len(bvidPrefix); i-- {
		out[i] = bvidAlphabet[tmp%bvidBase]
		tmp /= bvidBase
	}

	out[3], out[9] = out[9], out[3]
	out[4], out[7] = out[7], out[4]
	return string(out), nil
}

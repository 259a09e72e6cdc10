package encint

// SafeAdd returns a+b clamped to MaxValue on overflow. The clamp is applied
// through an encrypted comparison and select, never a plaintext branch.
func SafeAdd(s Scheme, a, b Amount) (Amount, error) {
	sum, err := s.Add(a, b)
	if err != nil {
		return nil, err
	}
	maxC, err := s.Const(MaxValue)
	if err != nil {
		return nil, err
	}
	inRange, err := s.Le(sum, maxC)
	if err != nil {
		return nil, err
	}
	return s.Select(inRange, sum, maxC)
}

// SafeSub returns max(0, a-b). Underflow clamps to zero through an encrypted
// comparison and select.
func SafeSub(s Scheme, a, b Amount) (Amount, error) {
	diff, err := s.Sub(a, b)
	if err != nil {
		return nil, err
	}
	zero, err := s.Const(0)
	if err != nil {
		return nil, err
	}
	noUnderflow, err := s.Le(b, a)
	if err != nil {
		return nil, err
	}
	return s.Select(noUnderflow, diff, zero)
}

// SafeMul returns a*b. Overflow is not checked: division by an encrypted
// value is unsupported, so a precise post-hoc check is impossible with this
// primitive set. Callers must bound their operands.
func SafeMul(s Scheme, a, b Amount) (Amount, error) {
	return s.Mul(a, b)
}

// DivByPlaintext returns a/k for a plaintext divisor k. A zero divisor is a
// fatal validation error, never retried.
func DivByPlaintext(s Scheme, a Amount, k uint64) (Amount, error) {
	if k == 0 {
		return nil, ErrZeroDivisor
	}
	return s.DivScalar(a, k)
}

// PercentageOf returns value*bps/10000, composed from SafeMul and
// DivByPlaintext. bps must not exceed 10000.
func PercentageOf(s Scheme, value Amount, bps uint64) (Amount, error) {
	if bps > 10000 {
		return nil, ErrInvalidBps
	}
	bpsC, err := s.Const(bps)
	if err != nil {
		return nil, err
	}
	scaled, err := SafeMul(s, value, bpsC)
	if err != nil {
		return nil, err
	}
	return DivByPlaintext(s, scaled, 10000)
}

// Min returns the smaller of a and b via encrypted comparison and select.
func Min(s Scheme, a, b Amount) (Amount, error) {
	le, err := s.Le(a, b)
	if err != nil {
		return nil, err
	}
	return s.Select(le, a, b)
}

// Max returns the larger of a and b via encrypted comparison and select.
func Max(s Scheme, a, b Amount) (Amount, error) {
	le, err := s.Le(a, b)
	if err != nil {
		return nil, err
	}
	return s.Select(le, b, a)
}

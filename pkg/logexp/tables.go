package logexp

import "math/big"

// term pairs an exponent with its natural exponential: a = e^x.
type term struct {
	x *big.Int
	a *big.Int
}

// wideTerms hold e^128 and e^64. Exponents carry 18 decimals, the powers none.
var wideTerms = [...]term{
	{x: mustInt("128000000000000000000"), a: mustInt("38877084059945950922200000000000000000000000000000000000")},
	{x: mustInt("64000000000000000000"), a: mustInt("6235149080811616882910000000")},
}

// terms hold e^(2^k) for k = 5 down to -4, exponents and powers both at 20
// decimals. Exp only needs the first eight; Ln uses all ten.
var terms = [...]term{
	{x: mustInt("3200000000000000000000"), a: mustInt("7896296018268069516100000000000000")},
	{x: mustInt("1600000000000000000000"), a: mustInt("888611052050787263676000000")},
	{x: mustInt("800000000000000000000"), a: mustInt("298095798704172827474000")},
	{x: mustInt("400000000000000000000"), a: mustInt("5459815003314423907810")},
	{x: mustInt("200000000000000000000"), a: mustInt("738905609893065022723")},
	{x: mustInt("100000000000000000000"), a: mustInt("271828182845904523536")},
	{x: mustInt("50000000000000000000"), a: mustInt("164872127070012814685")},
	{x: mustInt("25000000000000000000"), a: mustInt("128402541668774148407")},
	{x: mustInt("12500000000000000000"), a: mustInt("113314845306682631683")},
	{x: mustInt("6250000000000000000"), a: mustInt("106449445891785942956")},
}

func mustInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("logexp: bad constant " + s)
	}
	return v
}

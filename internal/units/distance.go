package units

// milliarcsecondsPerArcsecond scales a parallax in mas so that
// 1000/p yields parsecs.
const milliarcsecondsPerArcsecond = 1000.0

// ParallaxToParsecs converts a parallax in milliarcseconds to a distance in
// parsecs. Zero and negative parallaxes are not guarded: 0 yields +Inf.
func ParallaxToParsecs(parallaxMas float64) float64 {
	return milliarcsecondsPerArcsecond / parallaxMas
}

// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package assist

// Based on the OpenGL ES Shading Language 1.00 specification, which is what
// WebGL 1 accepts.

var keywords = []string{
	"attribute", "const", "uniform", "varying",
	"break", "continue", "do", "for", "while",
	"if", "else", "discard", "return",
	"struct", "true", "false",
	"invariant", "precision",
}

var qualifiers = []string{
	"in", "out", "inout",
	"lowp", "mediump", "highp",
}

var types = map[string]string{
	"void":        "No value. Used as the return type of functions that don't return anything.",
	"bool":        "A conditional type, taking on values of `true` or `false`.",
	"int":         "A signed integer.",
	"float":       "A single-precision floating point scalar.",
	"vec2":        "A two-component floating point vector.",
	"vec3":        "A three-component floating point vector.",
	"vec4":        "A four-component floating point vector.",
	"bvec2":       "A two-component Boolean vector.",
	"bvec3":       "A three-component Boolean vector.",
	"bvec4":       "A four-component Boolean vector.",
	"ivec2":       "A two-component signed integer vector.",
	"ivec3":       "A three-component signed integer vector.",
	"ivec4":       "A four-component signed integer vector.",
	"mat2":        "A 2×2 floating point matrix.",
	"mat3":        "A 3×3 floating point matrix.",
	"mat4":        "A 4×4 floating point matrix.",
	"sampler2D":   "A handle for accessing a 2D texture.",
	"samplerCube": "A handle for accessing a cube mapped texture.",
}

type variable struct {
	typ, doc string
}

var variables = map[string]variable{
	"gl_Position":       {"vec4", "Vertex shader output: the clip-space position of the vertex."},
	"gl_PointSize":      {"float", "Vertex shader output: the size of the point to be rasterized, in pixels."},
	"gl_FragCoord":      {"vec4", "Fragment shader input: window-relative coordinates of the fragment."},
	"gl_FrontFacing":    {"bool", "Fragment shader input: `true` if the fragment belongs to a front-facing primitive."},
	"gl_PointCoord":     {"vec2", "Fragment shader input: the position of the fragment within a point, from 0.0 to 1.0."},
	"gl_FragColor":      {"vec4", "Fragment shader output: the color of the fragment."},
	"gl_FragData":       {"vec4[gl_MaxDrawBuffers]", "Fragment shader output: data written to each draw buffer."},
	"gl_MaxDrawBuffers": {"const mediump int", "The number of draw buffers available, at least 1."},
}

type function struct {
	ret    string
	params []Param
	doc    string
}

func p(label, doc string) Param { return Param{Label: label, Doc: doc} }

var functions = map[string]function{
	// Angle and trigonometry.
	"radians": {
		ret:    "genType",
		params: []Param{p("genType degrees", "Angle in degrees.")},
		doc:    "Converts degrees to radians.",
	},
	"degrees": {
		ret:    "genType",
		params: []Param{p("genType radians", "Angle in radians.")},
		doc:    "Converts radians to degrees.",
	},
	"sin": {
		ret:    "genType",
		params: []Param{p("genType angle", "Angle in radians.")},
		doc:    "The standard trigonometric sine function.",
	},
	"cos": {
		ret:    "genType",
		params: []Param{p("genType angle", "Angle in radians.")},
		doc:    "The standard trigonometric cosine function.",
	},
	"tan": {
		ret:    "genType",
		params: []Param{p("genType angle", "Angle in radians.")},
		doc:    "The standard trigonometric tangent.",
	},
	"asin": {
		ret:    "genType",
		params: []Param{p("genType x", "Sine value, in [-1, 1].")},
		doc:    "Arc sine. Returns an angle whose sine is x.",
	},
	"acos": {
		ret:    "genType",
		params: []Param{p("genType x", "Cosine value, in [-1, 1].")},
		doc:    "Arc cosine. Returns an angle whose cosine is x.",
	},
	"atan": {
		ret: "genType",
		params: []Param{
			p("genType y", "Numerator."),
			p("genType x", "Denominator."),
		},
		doc: "Arc tangent. Returns an angle whose tangent is y/x, using the signs of both to determine the quadrant.",
	},

	// Exponential.
	"pow": {
		ret: "genType",
		params: []Param{
			p("genType x", "Base."),
			p("genType y", "Exponent."),
		},
		doc: "Returns x raised to the y power. Undefined if x < 0, or if x = 0 and y ≤ 0.",
	},
	"exp": {
		ret:    "genType",
		params: []Param{p("genType x", "Exponent.")},
		doc:    "Returns the natural exponentiation of x.",
	},
	"log": {
		ret:    "genType",
		params: []Param{p("genType x", "Value, must be > 0.")},
		doc:    "Returns the natural logarithm of x.",
	},
	"exp2": {
		ret:    "genType",
		params: []Param{p("genType x", "Exponent.")},
		doc:    "Returns 2 raised to the x power.",
	},
	"log2": {
		ret:    "genType",
		params: []Param{p("genType x", "Value, must be > 0.")},
		doc:    "Returns the base 2 logarithm of x.",
	},
	"sqrt": {
		ret:    "genType",
		params: []Param{p("genType x", "Value, must be ≥ 0.")},
		doc:    "Returns the square root of x.",
	},
	"inversesqrt": {
		ret:    "genType",
		params: []Param{p("genType x", "Value, must be > 0.")},
		doc:    "Returns 1 / sqrt(x).",
	},

	// Common.
	"abs": {
		ret:    "genType",
		params: []Param{p("genType x", "Value.")},
		doc:    "Returns x if x ≥ 0, otherwise -x.",
	},
	"sign": {
		ret:    "genType",
		params: []Param{p("genType x", "Value.")},
		doc:    "Returns 1.0 if x > 0, 0.0 if x = 0, or -1.0 if x < 0.",
	},
	"floor": {
		ret:    "genType",
		params: []Param{p("genType x", "Value.")},
		doc:    "Returns the nearest integer less than or equal to x.",
	},
	"ceil": {
		ret:    "genType",
		params: []Param{p("genType x", "Value.")},
		doc:    "Returns the nearest integer greater than or equal to x.",
	},
	"fract": {
		ret:    "genType",
		params: []Param{p("genType x", "Value.")},
		doc:    "Returns x - floor(x).",
	},
	"mod": {
		ret: "genType",
		params: []Param{
			p("genType x", "Dividend."),
			p("genType y", "Divisor, a genType or a float."),
		},
		doc: "Modulus. Returns x - y * floor(x / y).",
	},
	"min": {
		ret: "genType",
		params: []Param{
			p("genType x", "First value."),
			p("genType y", "Second value, a genType or a float."),
		},
		doc: "Returns y if y < x, otherwise x.",
	},
	"max": {
		ret: "genType",
		params: []Param{
			p("genType x", "First value."),
			p("genType y", "Second value, a genType or a float."),
		},
		doc: "Returns y if x < y, otherwise x.",
	},
	"clamp": {
		ret: "genType",
		params: []Param{
			p("genType x", "Value to constrain."),
			p("genType minVal", "Lower bound."),
			p("genType maxVal", "Upper bound."),
		},
		doc: "Returns min(max(x, minVal), maxVal).",
	},
	"mix": {
		ret: "genType",
		params: []Param{
			p("genType x", "Start of the range."),
			p("genType y", "End of the range."),
			p("genType a", "Weight to interpolate with, a genType or a float."),
		},
		doc: "Linear blend of x and y: x * (1 - a) + y * a.",
	},
	"step": {
		ret: "genType",
		params: []Param{
			p("genType edge", "Location of the edge of the step function."),
			p("genType x", "Value to test."),
		},
		doc: "Returns 0.0 if x < edge, otherwise 1.0.",
	},
	"smoothstep": {
		ret: "genType",
		params: []Param{
			p("genType edge0", "Lower edge of the Hermite function."),
			p("genType edge1", "Upper edge of the Hermite function."),
			p("genType x", "Source value for interpolation."),
		},
		doc: "Returns 0.0 if x ≤ edge0 and 1.0 if x ≥ edge1, performing smooth Hermite interpolation in between.",
	},

	// Geometric.
	"length": {
		ret:    "float",
		params: []Param{p("genType x", "Vector.")},
		doc:    "Returns the length of vector x.",
	},
	"distance": {
		ret: "float",
		params: []Param{
			p("genType p0", "First point."),
			p("genType p1", "Second point."),
		},
		doc: "Returns the distance between p0 and p1.",
	},
	"dot": {
		ret: "float",
		params: []Param{
			p("genType x", "First vector."),
			p("genType y", "Second vector."),
		},
		doc: "Returns the dot product of x and y.",
	},
	"cross": {
		ret: "vec3",
		params: []Param{
			p("vec3 x", "First vector."),
			p("vec3 y", "Second vector."),
		},
		doc: "Returns the cross product of x and y.",
	},
	"normalize": {
		ret:    "genType",
		params: []Param{p("genType x", "Vector.")},
		doc:    "Returns a vector in the same direction as x with a length of 1.",
	},
	"faceforward": {
		ret: "genType",
		params: []Param{
			p("genType N", "Vector to orient."),
			p("genType I", "Incident vector."),
			p("genType Nref", "Reference vector."),
		},
		doc: "Returns N if dot(Nref, I) < 0, otherwise -N.",
	},
	"reflect": {
		ret: "genType",
		params: []Param{
			p("genType I", "Incident vector."),
			p("genType N", "Surface normal, should be normalized."),
		},
		doc: "Returns the reflection direction: I - 2 * dot(N, I) * N.",
	},
	"refract": {
		ret: "genType",
		params: []Param{
			p("genType I", "Incident vector, should be normalized."),
			p("genType N", "Surface normal, should be normalized."),
			p("float eta", "Ratio of indices of refraction."),
		},
		doc: "Returns the refraction vector for the incident vector I, surface normal N and ratio eta.",
	},

	// Matrix and vector relational.
	"matrixCompMult": {
		ret: "mat",
		params: []Param{
			p("mat x", "First matrix."),
			p("mat y", "Second matrix."),
		},
		doc: "Multiplies x by y component-wise.",
	},
	"lessThan": {
		ret: "bvec",
		params: []Param{
			p("vec x", "First vector."),
			p("vec y", "Second vector."),
		},
		doc: "Returns the component-wise compare of x < y.",
	},
	"greaterThan": {
		ret: "bvec",
		params: []Param{
			p("vec x", "First vector."),
			p("vec y", "Second vector."),
		},
		doc: "Returns the component-wise compare of x > y.",
	},
	"equal": {
		ret: "bvec",
		params: []Param{
			p("vec x", "First vector."),
			p("vec y", "Second vector."),
		},
		doc: "Returns the component-wise compare of x == y.",
	},
	"any": {
		ret:    "bool",
		params: []Param{p("bvec x", "Boolean vector.")},
		doc:    "Returns true if any component of x is true.",
	},
	"all": {
		ret:    "bool",
		params: []Param{p("bvec x", "Boolean vector.")},
		doc:    "Returns true only if all components of x are true.",
	},
	"not": {
		ret:    "bvec",
		params: []Param{p("bvec x", "Boolean vector.")},
		doc:    "Returns the component-wise logical complement of x.",
	},

	// Texture lookup.
	"texture2D": {
		ret: "vec4",
		params: []Param{
			p("sampler2D sampler", "Texture to sample."),
			p("vec2 coord", "Texture coordinates."),
		},
		doc: "Samples the 2D texture bound to sampler at coord.",
	},
	"textureCube": {
		ret: "vec4",
		params: []Param{
			p("samplerCube sampler", "Cube map to sample."),
			p("vec3 coord", "Direction vector."),
		},
		doc: "Samples the cube map bound to sampler in direction coord.",
	},
}

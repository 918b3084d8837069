// Package descriptor parses binding descriptor text into an ordered
// directive sequence.
//
// The format is line-oriented and declarative:
//
//	link(shapes.cpp, shapes.h) gamekit
//	export {
//	    class(Circle) {
//	        constructor
//	        method(area)
//	        method_const(intersects, const Circle&)
//	        field(radius)
//	    }
//	    func(clamp)
//	    template_func(maximum) types(int, float)
//	}
//	dependency(mathcore)
//
// Unmatched brackets, member directives outside a class block, and
// template instantiations without type arguments fail with a
// DescriptorSyntaxError carrying line and column. Unknown directive
// keywords are skipped with a logged warning so the format can grow
// without breaking older builders.
package descriptor

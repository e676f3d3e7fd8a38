package entity

// Renderer draws objects. The engine never calls it; render sinks walk the
// layers and let each object dispatch to the matching method.
type Renderer interface {
	RenderBall(ball Ball)
	RenderCar(car Car)
	RenderGround(ground Ground)
	RenderTarget(target Target)
	Clear()
	Present()
}

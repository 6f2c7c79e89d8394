package runtime

import "sync"

// Builtins returns the shared engine built-in type database. It is
// read-only; callers must not Define into it.
var Builtins = sync.OnceValue(func() *TypeDB {
	db := NewTypeDB()
	db.builtin = true
	if err := db.load(builtinTypes); err != nil {
		panic(err)
	}
	for name, ret := range builtinFunctions {
		db.Function(name, ret)
	}
	for _, name := range builtinSingletons {
		db.Singleton(name, name)
	}
	return db
})

// ImplicitBase is the base type of a script without an extends clause.
const ImplicitBase = "RefCounted"

// IsValueType reports whether name is a Variant value type rather than an
// Object class. Value types are constructed by calling the type name.
func IsValueType(name string) bool {
	_, ok := valueTypes[ElementBase(name)]
	return ok
}

var valueTypes = map[string]struct{}{
	"int": {}, "float": {}, "bool": {}, "String": {}, "StringName": {}, "NodePath": {},
	"Vector2": {}, "Vector2i": {}, "Vector3": {}, "Vector3i": {}, "Vector4": {}, "Vector4i": {},
	"Color": {}, "Rect2": {}, "Rect2i": {}, "Transform2D": {}, "Transform3D": {}, "Basis": {},
	"Quaternion": {}, "AABB": {}, "Plane": {}, "Projection": {}, "RID": {}, "Callable": {},
	"Signal": {}, "Array": {}, "Dictionary": {}, "PackedByteArray": {}, "PackedInt32Array": {},
	"PackedInt64Array": {}, "PackedFloat32Array": {}, "PackedFloat64Array": {},
	"PackedStringArray": {}, "PackedVector2Array": {}, "PackedVector3Array": {},
	"PackedColorArray": {},
}

var builtinSingletons = []string{
	"Input", "OS", "Engine", "Time", "ResourceLoader", "ResourceSaver", "ProjectSettings",
	"DisplayServer", "Performance", "ClassDB", "AudioServer", "PhysicsServer2D",
	"PhysicsServer3D", "RenderingServer", "IP", "JavaClassWrapper", "Marshalls",
}

var builtinFunctions = map[string]string{
	"print": "void", "prints": "void", "printt": "void", "printerr": "void", "print_rich": "void",
	"print_debug": "void", "push_error": "void", "push_warning": "void", "assert": "void",
	"range": "Array[int]", "len": "int", "str": "String", "char": "String",
	"abs": "Variant", "absf": "float", "absi": "int", "sign": "Variant", "signf": "float", "signi": "int",
	"clamp": "Variant", "clampf": "float", "clampi": "int",
	"min": "Variant", "minf": "float", "mini": "int", "max": "Variant", "maxf": "float", "maxi": "int",
	"lerp": "Variant", "lerpf": "float", "inverse_lerp": "float", "remap": "float",
	"move_toward": "float", "snapped": "Variant", "snappedf": "float", "snappedi": "int",
	"floor": "Variant", "floorf": "float", "floori": "int", "ceil": "Variant", "ceilf": "float",
	"ceili": "int", "round": "Variant", "roundf": "float", "roundi": "int",
	"sqrt": "float", "pow": "float", "exp": "float", "log": "float", "sin": "float", "cos": "float",
	"tan": "float", "asin": "float", "acos": "float", "atan": "float", "atan2": "float",
	"fmod": "float", "fposmod": "float", "posmod": "int", "wrapf": "float", "wrapi": "int",
	"deg_to_rad": "float", "rad_to_deg": "float", "is_equal_approx": "bool", "is_zero_approx": "bool",
	"randi": "int", "randf": "float", "randi_range": "int", "randf_range": "float", "randfn": "float",
	"randomize": "void", "seed": "void",
	"load": "Resource", "preload": "Resource", "is_instance_valid": "bool",
	"is_instance_id_valid": "bool", "instance_from_id": "Object", "weakref": "WeakRef",
	"typeof": "int", "type_string": "String", "hash": "int", "str_to_var": "Variant",
	"var_to_str": "String", "bytes_to_var": "Variant", "var_to_bytes": "PackedByteArray",
	"get_stack": "Array", "inst_to_dict": "Dictionary", "dict_to_inst": "Object",
	"convert": "Variant", "type_exists": "bool",
	"PI": "float", "TAU": "float", "INF": "float", "NAN": "float",
}

var builtinTypes = []typeSpec{
	{"Variant", "", nil},
	{"Object", "", []string{
		"get_class() String", "is_class() bool", "get() Variant", "set() void", "set_deferred() void",
		"call() Variant", "callv() Variant", "call_deferred() Variant", "has_method() bool",
		"has_signal() bool", "connect() int", "disconnect() void", "is_connected() bool",
		"emit_signal() int", "get_script() Variant", "set_script() void", "free() void",
		"notification() void", "set_meta() void", "get_meta() Variant", "has_meta() bool",
		"get_instance_id() int", "tr() String", "get_property_list() Array[Dictionary]",
		"get_signal_list() Array[Dictionary]", "get_method_list() Array[Dictionary]",
		"is_queued_for_deletion() bool",
		"signal script_changed", "signal property_list_changed",
	}},
	{"RefCounted", "Object", []string{"reference() bool", "unreference() bool", "get_reference_count() int"}},
	{"WeakRef", "RefCounted", []string{"get_ref() Variant"}},
	{"Resource", "RefCounted", []string{
		"resource_path: String", "resource_name: String", "duplicate() Resource", "emit_changed() void",
		"take_over_path() void", "signal changed",
	}},
	{"Script", "Resource", []string{"new() Variant", "get_base_script() Script", "can_instantiate() bool"}},
	{"GDScript", "Script", nil},
	{"PackedScene", "Resource", []string{"instantiate() Node", "can_instantiate() bool", "pack() int"}},
	{"Texture", "Resource", nil},
	{"Texture2D", "Texture", []string{"get_width() int", "get_height() int", "get_size() Vector2"}},
	{"Shape2D", "Resource", nil},
	{"AudioStream", "Resource", []string{"get_length() float"}},
	{"InputEvent", "Resource", []string{
		"is_action_pressed() bool", "is_action_released() bool", "is_action() bool",
		"is_pressed() bool", "is_echo() bool", "as_text() String", "device: int",
	}},
	{"InputEventWithModifiers", "InputEvent", []string{"shift_pressed: bool", "ctrl_pressed: bool", "alt_pressed: bool"}},
	{"InputEventKey", "InputEventWithModifiers", []string{"keycode: int", "physical_keycode: int", "pressed: bool"}},
	{"InputEventMouse", "InputEventWithModifiers", []string{"position: Vector2", "global_position: Vector2"}},
	{"InputEventMouseButton", "InputEventMouse", []string{"button_index: int", "pressed: bool", "double_click: bool"}},
	{"InputEventMouseMotion", "InputEventMouse", []string{"relative: Vector2", "velocity: Vector2"}},
	{"Node", "Object", []string{
		"name: StringName", "owner: Node", "process_mode: int", "unique_name_in_owner: bool",
		"add_child() void", "remove_child() void", "get_node() Node", "get_node_or_null() Node",
		"get_parent() Node", "get_children() Array[Node]", "get_child() Node", "get_child_count() int",
		"find_child() Node", "find_children() Array[Node]", "has_node() bool", "queue_free() void",
		"get_tree() SceneTree", "is_inside_tree() bool", "get_path() NodePath", "add_to_group() void",
		"remove_from_group() void", "is_in_group() bool", "set_process() void",
		"set_physics_process() void", "set_process_input() void", "is_processing() bool",
		"duplicate() Node", "reparent() void", "move_child() void", "get_index() int",
		"get_viewport() Viewport", "get_window() Window", "create_tween() Tween",
		"is_node_ready() bool", "print_tree() void",
		"_ready() void", "_process() void", "_physics_process() void", "_input() void",
		"_unhandled_input() void", "_unhandled_key_input() void", "_enter_tree() void",
		"_exit_tree() void", "_notification() void", "_init() void",
		"signal ready", "signal tree_entered", "signal tree_exiting", "signal tree_exited",
		"signal child_entered_tree", "signal child_exiting_tree", "signal renamed",
	}},
	{"CanvasItem", "Node", []string{
		"visible: bool", "modulate: Color", "self_modulate: Color", "z_index: int",
		"show_behind_parent: bool", "material: Resource",
		"show() void", "hide() void", "queue_redraw() void", "is_visible_in_tree() bool",
		"get_global_mouse_position() Vector2", "get_local_mouse_position() Vector2",
		"get_canvas_transform() Transform2D", "draw_line() void", "draw_circle() void",
		"draw_rect() void", "draw_texture() void", "draw_string() void", "_draw() void",
		"signal draw", "signal visibility_changed", "signal hidden", "signal item_rect_changed",
	}},
	{"Node2D", "CanvasItem", []string{
		"position: Vector2", "rotation: float", "rotation_degrees: float", "scale: Vector2",
		"skew: float", "transform: Transform2D", "global_position: Vector2",
		"global_rotation: float", "global_scale: Vector2", "global_transform: Transform2D",
		"look_at() void", "rotate() void", "translate() void", "move_local_x() void",
		"move_local_y() void", "to_local() Vector2", "to_global() Vector2",
		"get_angle_to() float",
	}},
	{"Sprite2D", "Node2D", []string{
		"texture: Texture2D", "centered: bool", "offset: Vector2", "flip_h: bool", "flip_v: bool",
		"frame: int", "hframes: int", "vframes: int", "region_enabled: bool", "region_rect: Rect2",
		"get_rect() Rect2", "signal texture_changed", "signal frame_changed",
	}},
	{"AnimatedSprite2D", "Node2D", []string{
		"animation: StringName", "frame: int", "speed_scale: float", "flip_h: bool", "flip_v: bool",
		"play() void", "stop() void", "pause() void", "is_playing() bool",
		"signal animation_finished", "signal animation_looped", "signal frame_changed",
		"signal animation_changed",
	}},
	{"CollisionObject2D", "Node2D", []string{
		"collision_layer: int", "collision_mask: int", "input_pickable: bool",
		"set_collision_layer_value() void", "set_collision_mask_value() void",
		"signal input_event", "signal mouse_entered", "signal mouse_exited",
	}},
	{"PhysicsBody2D", "CollisionObject2D", []string{
		"move_and_collide() KinematicCollision2D", "test_move() bool",
		"add_collision_exception_with() void",
	}},
	{"CharacterBody2D", "PhysicsBody2D", []string{
		"velocity: Vector2", "up_direction: Vector2", "floor_max_angle: float",
		"motion_mode: int", "move_and_slide() bool", "is_on_floor() bool", "is_on_wall() bool",
		"is_on_ceiling() bool", "get_floor_normal() Vector2", "get_wall_normal() Vector2",
		"get_slide_collision_count() int", "get_slide_collision() KinematicCollision2D",
		"get_last_slide_collision() KinematicCollision2D", "get_real_velocity() Vector2",
	}},
	{"RigidBody2D", "PhysicsBody2D", []string{
		"mass: float", "gravity_scale: float", "linear_velocity: Vector2",
		"angular_velocity: float", "freeze: bool", "apply_impulse() void",
		"apply_central_impulse() void", "apply_force() void", "apply_central_force() void",
		"apply_torque() void", "get_colliding_bodies() Array[Node2D]",
		"signal body_entered", "signal body_exited", "signal sleeping_state_changed",
	}},
	{"StaticBody2D", "PhysicsBody2D", []string{"constant_linear_velocity: Vector2"}},
	{"Area2D", "CollisionObject2D", []string{
		"monitoring: bool", "monitorable: bool", "gravity: float",
		"get_overlapping_bodies() Array[Node2D]", "get_overlapping_areas() Array[Area2D]",
		"has_overlapping_bodies() bool", "has_overlapping_areas() bool",
		"overlaps_body() bool", "overlaps_area() bool",
		"signal body_entered", "signal body_exited", "signal area_entered", "signal area_exited",
		"signal body_shape_entered", "signal area_shape_entered",
	}},
	{"CollisionShape2D", "Node2D", []string{"shape: Shape2D", "disabled: bool", "one_way_collision: bool"}},
	{"Camera2D", "Node2D", []string{
		"zoom: Vector2", "offset: Vector2", "enabled: bool", "make_current() void",
		"is_current() bool", "get_screen_center_position() Vector2",
	}},
	{"Marker2D", "Node2D", nil},
	{"RayCast2D", "Node2D", []string{
		"target_position: Vector2", "enabled: bool", "is_colliding() bool",
		"get_collider() Object", "get_collision_point() Vector2", "get_collision_normal() Vector2",
		"force_raycast_update() void",
	}},
	{"TileMap", "Node2D", []string{"get_cell_source_id() int", "set_cell() void", "local_to_map() Vector2i", "map_to_local() Vector2"}},
	{"TileMapLayer", "Node2D", []string{"get_cell_source_id() int", "set_cell() void", "local_to_map() Vector2i", "map_to_local() Vector2"}},
	{"GPUParticles2D", "Node2D", []string{"emitting: bool", "amount: int", "one_shot: bool", "restart() void", "signal finished"}},
	{"Line2D", "Node2D", []string{"points: PackedVector2Array", "width: float", "add_point() void", "clear_points() void"}},
	{"Control", "CanvasItem", []string{
		"size: Vector2", "position: Vector2", "global_position: Vector2", "custom_minimum_size: Vector2",
		"tooltip_text: String", "mouse_filter: int", "focus_mode: int", "theme: Resource",
		"grab_focus() void", "release_focus() void", "has_focus() bool", "get_rect() Rect2",
		"get_global_rect() Rect2", "set_anchors_preset() void", "accept_event() void",
		"add_theme_color_override() void", "add_theme_font_size_override() void",
		"_gui_input() void",
		"signal gui_input", "signal mouse_entered", "signal mouse_exited", "signal resized",
		"signal focus_entered", "signal focus_exited", "signal minimum_size_changed",
	}},
	{"Label", "Control", []string{"text: String", "horizontal_alignment: int", "autowrap_mode: int", "visible_characters: int", "get_line_count() int"}},
	{"RichTextLabel", "Control", []string{"text: String", "bbcode_enabled: bool", "append_text() void", "clear() void", "signal meta_clicked"}},
	{"BaseButton", "Control", []string{
		"disabled: bool", "button_pressed: bool", "toggle_mode: bool", "is_pressed() bool",
		"signal pressed", "signal toggled", "signal button_down", "signal button_up",
	}},
	{"Button", "BaseButton", []string{"text: String", "icon: Texture2D", "flat: bool"}},
	{"CheckBox", "Button", nil},
	{"TextureButton", "BaseButton", []string{"texture_normal: Texture2D"}},
	{"LineEdit", "Control", []string{
		"text: String", "placeholder_text: String", "editable: bool", "max_length: int",
		"clear() void", "select_all() void",
		"signal text_changed", "signal text_submitted",
	}},
	{"TextEdit", "Control", []string{"text: String", "get_line() String", "get_line_count() int", "signal text_changed"}},
	{"Range", "Control", []string{"value: float", "min_value: float", "max_value: float", "step: float", "signal value_changed", "signal changed"}},
	{"ProgressBar", "Range", nil},
	{"Slider", "Range", nil},
	{"HSlider", "Slider", nil},
	{"SpinBox", "Range", nil},
	{"Container", "Control", []string{"queue_sort() void", "signal sort_children"}},
	{"BoxContainer", "Container", nil},
	{"VBoxContainer", "BoxContainer", nil},
	{"HBoxContainer", "BoxContainer", nil},
	{"GridContainer", "Container", []string{"columns: int"}},
	{"MarginContainer", "Container", nil},
	{"Panel", "Control", nil},
	{"PanelContainer", "Container", nil},
	{"TextureRect", "Control", []string{"texture: Texture2D", "stretch_mode: int"}},
	{"ColorRect", "Control", []string{"color: Color"}},
	{"ItemList", "Control", []string{"add_item() int", "clear() void", "get_item_text() String", "signal item_selected", "signal item_activated"}},
	{"OptionButton", "Button", []string{"add_item() void", "selected: int", "get_selected_id() int", "signal item_selected"}},
	{"CanvasLayer", "Node", []string{"layer: int", "visible: bool", "offset: Vector2"}},
	{"Node3D", "Node", []string{
		"position: Vector3", "rotation: Vector3", "rotation_degrees: Vector3", "scale: Vector3",
		"transform: Transform3D", "global_position: Vector3", "global_rotation: Vector3",
		"global_transform: Transform3D", "basis: Basis", "visible: bool",
		"look_at() void", "rotate_x() void", "rotate_y() void", "rotate_z() void",
		"translate() void", "to_local() Vector3", "to_global() Vector3", "show() void", "hide() void",
		"signal visibility_changed",
	}},
	{"VisualInstance3D", "Node3D", []string{"layers: int"}},
	{"GeometryInstance3D", "VisualInstance3D", []string{"cast_shadow: int"}},
	{"MeshInstance3D", "GeometryInstance3D", []string{"mesh: Resource", "get_surface_override_material() Resource"}},
	{"Camera3D", "Node3D", []string{"fov: float", "current: bool", "make_current() void", "project_ray_normal() Vector3", "unproject_position() Vector2"}},
	{"CollisionObject3D", "Node3D", []string{"collision_layer: int", "collision_mask: int", "signal input_event", "signal mouse_entered", "signal mouse_exited"}},
	{"PhysicsBody3D", "CollisionObject3D", []string{"move_and_collide() KinematicCollision3D", "test_move() bool"}},
	{"CharacterBody3D", "PhysicsBody3D", []string{
		"velocity: Vector3", "up_direction: Vector3", "move_and_slide() bool",
		"is_on_floor() bool", "is_on_wall() bool", "is_on_ceiling() bool",
		"get_floor_normal() Vector3",
	}},
	{"RigidBody3D", "PhysicsBody3D", []string{"mass: float", "linear_velocity: Vector3", "apply_impulse() void", "apply_central_impulse() void", "signal body_entered", "signal body_exited"}},
	{"StaticBody3D", "PhysicsBody3D", nil},
	{"Area3D", "CollisionObject3D", []string{
		"monitoring: bool", "get_overlapping_bodies() Array[Node3D]",
		"get_overlapping_areas() Array[Area3D]",
		"signal body_entered", "signal body_exited", "signal area_entered", "signal area_exited",
	}},
	{"KinematicCollision2D", "RefCounted", []string{
		"get_collider() Object", "get_normal() Vector2", "get_position() Vector2",
		"get_travel() Vector2", "get_remainder() Vector2", "get_collider_id() int",
	}},
	{"KinematicCollision3D", "RefCounted", []string{"get_collider() Object", "get_normal() Vector3", "get_position() Vector3"}},
	{"Timer", "Node", []string{
		"wait_time: float", "one_shot: bool", "autostart: bool", "paused: bool", "time_left: float",
		"start() void", "stop() void", "is_stopped() bool", "signal timeout",
	}},
	{"AnimationMixer", "Node", []string{"signal animation_finished", "signal animation_started", "get_animation() Animation", "has_animation() bool"}},
	{"AnimationPlayer", "AnimationMixer", []string{
		"current_animation: String", "speed_scale: float", "autoplay: String",
		"play() void", "play_backwards() void", "stop() void", "pause() void", "queue() void",
		"is_playing() bool", "seek() void", "signal current_animation_changed",
		"signal animation_changed",
	}},
	{"AnimationTree", "AnimationMixer", []string{"active: bool", "tree_root: Resource"}},
	{"Animation", "Resource", []string{"length: float", "loop_mode: int"}},
	{"AudioStreamPlayer", "Node", []string{
		"stream: AudioStream", "volume_db: float", "pitch_scale: float", "playing: bool", "autoplay: bool",
		"bus: StringName", "play() void", "stop() void", "get_playback_position() float", "signal finished",
	}},
	{"AudioStreamPlayer2D", "Node2D", []string{"stream: AudioStream", "volume_db: float", "playing: bool", "play() void", "stop() void", "signal finished"}},
	{"AudioStreamPlayer3D", "Node3D", []string{"stream: AudioStream", "volume_db: float", "playing: bool", "play() void", "stop() void", "signal finished"}},
	{"HTTPRequest", "Node", []string{"request() int", "cancel_request() void", "signal request_completed"}},
	{"Viewport", "Node", []string{
		"get_mouse_position() Vector2", "get_visible_rect() Rect2", "get_camera_2d() Camera2D",
		"get_camera_3d() Camera3D", "set_input_as_handled() void", "gui_get_focus_owner() Control",
		"signal size_changed",
	}},
	{"SubViewport", "Viewport", []string{"size: Vector2i"}},
	{"Window", "Viewport", []string{"title: String", "size: Vector2i", "mode: int", "popup_centered() void", "signal close_requested"}},
	{"MainLoop", "Object", nil},
	{"SceneTree", "MainLoop", []string{
		"paused: bool", "root: Window", "current_scene: Node",
		"change_scene_to_file() int", "change_scene_to_packed() int", "reload_current_scene() int",
		"create_timer() SceneTreeTimer", "create_tween() Tween", "get_nodes_in_group() Array[Node]",
		"get_first_node_in_group() Node", "call_group() void", "quit() void",
		"get_frame() int", "get_node_count() int",
		"signal process_frame", "signal physics_frame", "signal node_added", "signal node_removed",
		"signal tree_changed",
	}},
	{"SceneTreeTimer", "RefCounted", []string{"time_left: float", "signal timeout"}},
	{"Tween", "RefCounted", []string{
		"tween_property() PropertyTweener", "tween_callback() CallbackTweener",
		"tween_interval() IntervalTweener", "tween_method() MethodTweener",
		"set_ease() Tween", "set_trans() Tween", "set_parallel() Tween", "set_loops() Tween",
		"parallel() Tween", "chain() Tween", "kill() void", "play() void", "pause() void",
		"stop() void", "is_running() bool", "is_valid() bool",
		"signal finished", "signal step_finished", "signal loop_finished",
	}},
	{"Tweener", "RefCounted", []string{"signal finished"}},
	{"PropertyTweener", "Tweener", []string{"from() PropertyTweener", "as_relative() PropertyTweener", "set_ease() PropertyTweener", "set_trans() PropertyTweener", "set_delay() PropertyTweener"}},
	{"CallbackTweener", "Tweener", []string{"set_delay() CallbackTweener"}},
	{"IntervalTweener", "Tweener", nil},
	{"MethodTweener", "Tweener", []string{"set_delay() MethodTweener"}},
	{"FileAccess", "RefCounted", []string{
		"static open() FileAccess", "static file_exists() bool", "static get_file_as_string() String",
		"get_as_text() String", "get_line() String", "store_string() void", "store_line() void",
		"eof_reached() bool", "close() void",
	}},
	{"DirAccess", "RefCounted", []string{"static open() DirAccess", "static dir_exists_absolute() bool", "static make_dir_recursive_absolute() int", "list_dir_begin() int", "get_next() String", "current_is_dir() bool"}},
	{"JSON", "Resource", []string{"static parse_string() Variant", "static stringify() String", "parse() int", "data: Variant", "get_error_message() String"}},
	{"ConfigFile", "RefCounted", []string{"load() int", "save() int", "get_value() Variant", "set_value() void", "has_section() bool"}},
	{"RandomNumberGenerator", "RefCounted", []string{"seed: int", "randomize() void", "randi() int", "randf() float", "randi_range() int", "randf_range() float"}},
	{"Input", "Object", []string{
		"static is_action_pressed() bool", "static is_action_just_pressed() bool",
		"static is_action_just_released() bool", "static get_action_strength() float",
		"static get_axis() float", "static get_vector() Vector2", "static is_key_pressed() bool",
		"static is_mouse_button_pressed() bool", "static get_mouse_mode() int",
		"static set_mouse_mode() void", "static get_last_mouse_velocity() Vector2",
		"static action_press() void", "static action_release() void",
		"signal joy_connection_changed",
	}},
	{"OS", "Object", []string{"static get_name() String", "static has_feature() bool", "static get_environment() String", "static get_cmdline_args() PackedStringArray", "static is_debug_build() bool", "static get_user_data_dir() String", "static shell_open() int"}},
	{"Engine", "Object", []string{"static get_frames_per_second() float", "static is_editor_hint() bool", "static get_physics_frames() int", "static get_process_frames() int", "time_scale: float", "static has_singleton() bool", "static get_singleton() Object"}},
	{"Time", "Object", []string{"static get_ticks_msec() int", "static get_ticks_usec() int", "static get_unix_time_from_system() float", "static get_datetime_string_from_system() String", "static get_datetime_dict_from_system() Dictionary"}},
	{"ResourceLoader", "Object", []string{"static load() Resource", "static exists() bool", "static load_threaded_request() int", "static load_threaded_get() Resource"}},
	{"ResourceSaver", "Object", []string{"static save() int"}},
	{"ProjectSettings", "Object", []string{"static get_setting() Variant", "static set_setting() void", "static has_setting() bool", "static globalize_path() String"}},
	{"DisplayServer", "Object", []string{"static window_set_mode() void", "static window_get_size() Vector2i", "static screen_get_size() Vector2i"}},
	{"Performance", "Object", []string{"static get_monitor() float"}},
	{"ClassDB", "Object", []string{"static class_exists() bool", "static instantiate() Variant", "static get_parent_class() StringName"}},
	{"AudioServer", "Object", []string{"static get_bus_index() int", "static set_bus_volume_db() void", "static set_bus_mute() void"}},
	{"PhysicsServer2D", "Object", nil},
	{"PhysicsServer3D", "Object", nil},
	{"RenderingServer", "Object", nil},
	{"IP", "Object", nil},
	{"JavaClassWrapper", "Object", nil},
	{"Marshalls", "Object", nil},

	// Variant value types.
	{"int", "", nil},
	{"float", "", nil},
	{"bool", "", nil},
	{"String", "", []string{
		"length() int", "is_empty() bool", "to_lower() String", "to_upper() String",
		"capitalize() String", "begins_with() bool", "ends_with() bool", "contains() bool",
		"find() int", "rfind() int", "replace() String", "split() PackedStringArray",
		"strip_edges() String", "substr() String", "left() String", "right() String",
		"format() String", "to_int() int", "to_float() float", "is_valid_int() bool",
		"is_valid_float() bool", "pad_zeros() String", "pad_decimals() String", "join() String",
		"repeat() String", "count() int", "get_file() String", "get_extension() String",
		"get_basename() String", "get_base_dir() String", "path_join() String",
		"md5_text() String", "sha256_text() String", "to_utf8_buffer() PackedByteArray",
		"static num() String", "static num_int64() String", "static chr() String",
	}},
	{"StringName", "", []string{"length() int", "is_empty() bool", "begins_with() bool", "ends_with() bool", "contains() bool", "to_lower() String", "to_upper() String"}},
	{"NodePath", "", []string{"is_empty() bool", "get_name_count() int", "get_name() StringName", "get_concatenated_names() StringName"}},
	{"Vector2", "", []string{
		"x: float", "y: float",
		"length() float", "length_squared() float", "normalized() Vector2", "is_normalized() bool",
		"distance_to() float", "distance_squared_to() float", "direction_to() Vector2",
		"angle() float", "angle_to() float", "angle_to_point() float", "dot() float", "cross() float",
		"rotated() Vector2", "lerp() Vector2", "slerp() Vector2", "move_toward() Vector2",
		"limit_length() Vector2", "clamp() Vector2", "abs() Vector2", "floor() Vector2",
		"ceil() Vector2", "round() Vector2", "sign() Vector2", "snapped() Vector2",
		"bounce() Vector2", "reflect() Vector2", "slide() Vector2", "project() Vector2",
		"orthogonal() Vector2", "is_equal_approx() bool", "is_zero_approx() bool",
		"aspect() float", "max_axis_index() int", "static from_angle() Vector2",
		"const ZERO: Vector2", "const ONE: Vector2", "const INF: Vector2", "const UP: Vector2",
		"const DOWN: Vector2", "const LEFT: Vector2", "const RIGHT: Vector2",
		"const AXIS_X: int", "const AXIS_Y: int",
	}},
	{"Vector2i", "", []string{
		"x: int", "y: int", "length() float", "abs() Vector2i", "clamp() Vector2i", "sign() Vector2i",
		"const ZERO: Vector2i", "const ONE: Vector2i", "const UP: Vector2i", "const DOWN: Vector2i",
		"const LEFT: Vector2i", "const RIGHT: Vector2i",
	}},
	{"Vector3", "", []string{
		"x: float", "y: float", "z: float",
		"length() float", "length_squared() float", "normalized() Vector3", "distance_to() float",
		"direction_to() Vector3", "dot() float", "cross() Vector3", "rotated() Vector3",
		"lerp() Vector3", "move_toward() Vector3", "limit_length() Vector3", "abs() Vector3",
		"angle_to() float", "slide() Vector3", "bounce() Vector3", "is_zero_approx() bool",
		"const ZERO: Vector3", "const ONE: Vector3", "const UP: Vector3", "const DOWN: Vector3",
		"const LEFT: Vector3", "const RIGHT: Vector3", "const FORWARD: Vector3", "const BACK: Vector3",
	}},
	{"Vector3i", "", []string{"x: int", "y: int", "z: int", "const ZERO: Vector3i", "const ONE: Vector3i"}},
	{"Vector4", "", []string{"x: float", "y: float", "z: float", "w: float", "length() float", "normalized() Vector4"}},
	{"Vector4i", "", []string{"x: int", "y: int", "z: int", "w: int"}},
	{"Color", "", []string{
		"r: float", "g: float", "b: float", "a: float", "h: float", "s: float", "v: float",
		"r8: int", "g8: int", "b8: int", "a8: int",
		"lightened() Color", "darkened() Color", "lerp() Color", "inverted() Color",
		"blend() Color", "to_html() String", "is_equal_approx() bool",
		"static html() Color", "static from_hsv() Color",
		"const WHITE: Color", "const BLACK: Color", "const RED: Color", "const GREEN: Color",
		"const BLUE: Color", "const YELLOW: Color", "const TRANSPARENT: Color",
		"const GRAY: Color", "const ORANGE: Color", "const PURPLE: Color", "const CYAN: Color",
		"const MAGENTA: Color",
	}},
	{"Rect2", "", []string{
		"position: Vector2", "size: Vector2", "end: Vector2", "has_point() bool",
		"intersects() bool", "encloses() bool", "get_center() Vector2", "get_area() float",
		"grow() Rect2", "merge() Rect2", "abs() Rect2", "expand() Rect2",
	}},
	{"Rect2i", "", []string{"position: Vector2i", "size: Vector2i", "end: Vector2i", "has_point() bool", "get_center() Vector2i"}},
	{"Transform2D", "", []string{
		"origin: Vector2", "x: Vector2", "y: Vector2", "inverse() Transform2D",
		"affine_inverse() Transform2D", "get_rotation() float", "get_scale() Vector2",
		"get_origin() Vector2", "rotated() Transform2D", "translated() Transform2D",
		"scaled() Transform2D", "basis_xform() Vector2",
		"const IDENTITY: Transform2D", "const FLIP_X: Transform2D", "const FLIP_Y: Transform2D",
	}},
	{"Transform3D", "", []string{
		"origin: Vector3", "basis: Basis", "inverse() Transform3D", "affine_inverse() Transform3D",
		"rotated() Transform3D", "translated() Transform3D", "looking_at() Transform3D",
		"const IDENTITY: Transform3D",
	}},
	{"Basis", "", []string{"x: Vector3", "y: Vector3", "z: Vector3", "inverse() Basis", "get_euler() Vector3", "orthonormalized() Basis", "const IDENTITY: Basis"}},
	{"Quaternion", "", []string{"x: float", "y: float", "z: float", "w: float", "slerp() Quaternion", "get_euler() Vector3", "const IDENTITY: Quaternion"}},
	{"AABB", "", []string{"position: Vector3", "size: Vector3", "end: Vector3", "has_point() bool", "intersects() bool", "get_center() Vector3"}},
	{"Plane", "", []string{"normal: Vector3", "d: float", "distance_to() float", "is_point_over() bool"}},
	{"Projection", "", nil},
	{"RID", "", []string{"get_id() int", "is_valid() bool"}},
	{"Callable", "", []string{
		"call() Variant", "callv() Variant", "call_deferred() void", "bind() Callable",
		"bindv() Callable", "unbind() Callable", "is_valid() bool", "is_null() bool",
		"get_method() StringName", "get_object() Object", "get_bound_arguments() Array",
	}},
	{"Signal", "", []string{
		"connect() int", "disconnect() void", "emit() void", "is_connected() bool",
		"get_name() StringName", "get_object() Object", "get_connections() Array",
		"is_null() bool",
	}},
	{"Array", "", []string{
		"size() int", "is_empty() bool", "clear() void", "append() void", "append_array() void",
		"push_back() void", "push_front() void", "pop_back() Variant", "pop_front() Variant",
		"pop_at() Variant", "insert() int", "erase() void", "remove_at() void", "resize() int",
		"has() bool", "find() int", "rfind() int", "count() int", "front() Variant",
		"back() Variant", "pick_random() Variant", "max() Variant", "min() Variant",
		"map() Array", "filter() Array", "reduce() Variant", "any() bool", "all() bool",
		"sort() void", "sort_custom() void", "reverse() void", "shuffle() void",
		"duplicate() Array", "slice() Array", "fill() void", "bsearch() int", "hash() int",
		"is_typed() bool", "get_typed_builtin() int",
	}},
	{"Dictionary", "", []string{
		"size() int", "is_empty() bool", "clear() void", "has() bool", "has_all() bool",
		"keys() Array", "values() Array", "get() Variant", "get_or_add() Variant", "erase() bool",
		"merge() void", "merged() Dictionary", "duplicate() Dictionary", "find_key() Variant",
		"hash() int", "make_read_only() void", "is_typed() bool",
	}},
	{"PackedByteArray", "", []string{"size() int", "append() bool", "get_string_from_utf8() String", "is_empty() bool"}},
	{"PackedInt32Array", "", []string{"size() int", "append() bool", "has() bool", "is_empty() bool"}},
	{"PackedInt64Array", "", []string{"size() int", "append() bool", "has() bool", "is_empty() bool"}},
	{"PackedFloat32Array", "", []string{"size() int", "append() bool", "has() bool", "is_empty() bool"}},
	{"PackedFloat64Array", "", []string{"size() int", "append() bool", "has() bool", "is_empty() bool"}},
	{"PackedStringArray", "", []string{"size() int", "append() bool", "has() bool", "join() String", "is_empty() bool"}},
	{"PackedVector2Array", "", []string{"size() int", "append() bool", "has() bool", "is_empty() bool"}},
	{"PackedVector3Array", "", []string{"size() int", "append() bool", "has() bool", "is_empty() bool"}},
	{"PackedColorArray", "", []string{"size() int", "append() bool", "is_empty() bool"}},
}

package skins

// Built-in page chrome. Fragments marked safe were escaped upstream.
const (
	defaultHeadTemplate = `<!DOCTYPE html>
<html class="client-nojs" lang="{{ lang }}" dir="ltr">
<head>
<meta charset="UTF-8"/>
<title>{{ pagetitle }}</title>
{% for item in headitems %}{{ item|safe }}
{% endfor %}{% if styles %}<link rel="stylesheet" href="/w/load.php?modules={{ styles|join:"|" }}&amp;only=styles&amp;skin={{ skin }}"/>
{% endif %}<meta name="generator" content="wikiparse"/>
</head>
<body class="mediawiki ltr sitedir-ltr ns-{{ namespace }} page-{{ bodyclass }} skin-{{ skin }}">`

	defaultCategoriesTemplate = `{% if normal or hidden %}<div id="catlinks" class="catlinks" data-mw="interface">` +
		`{% if normal %}<div id="mw-normal-catlinks" class="mw-normal-catlinks"><a href="{{ categoriesurl }}" title="Special:Categories">{{ normallabel }}</a>: <ul>` +
		`{% for c in normal %}<li><a href="{{ c.url }}" title="{{ c.title }}"{% if c.missing %} class="new"{% endif %}>{{ c.label }}</a></li>{% endfor %}` +
		`</ul></div>{% endif %}` +
		`{% if hidden %}<div id="mw-hidden-catlinks" class="mw-hidden-catlinks mw-hidden-cats-hidden">{{ hiddenlabel }}: <ul>` +
		`{% for c in hidden %}<li><a href="{{ c.url }}" title="{{ c.title }}">{{ c.label }}</a></li>{% endfor %}` +
		`</ul></div>{% endif %}</div>{% endif %}`

	defaultSubtitleTemplate = `{% if parents %}<span class="subpages">{% for p in parents %}&lt; <a href="{{ p.url }}" title="{{ p.title }}">{{ p.label }}</a>{% if not forloop.Last %}&lrm; | {% endif %}{% endfor %}</span>{% endif %}`
)
